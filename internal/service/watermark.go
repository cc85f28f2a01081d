package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

// Watermark geometry. The grid runs from one page dimension before the
// visible area to one after, so the rotated text leaves no gaps at corners.
const (
	watermarkStepX    = 240.0
	watermarkStepY    = 120.0
	watermarkPoints   = 12
	watermarkOpacity  = 0.2
	watermarkRotation = -32
)

// WatermarkStamper tiles a viewer-identity line across every page of a PDF
// and bakes it into the page content stream, so stripping it requires
// rewriting the document rather than deleting an annotation layer.
type WatermarkStamper struct {
	conf *pdfmodel.Configuration
}

func NewWatermarkStamper() *WatermarkStamper {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &WatermarkStamper{conf: conf}
}

// DownloadWatermarkText is the long identity line stamped into downloads.
func DownloadWatermarkText(viewerEmail, ipAddress string, now time.Time, roomName, filename string) string {
	return fmt.Sprintf("%s | %s | %s | %s | %s",
		viewerEmail, ipAddress, now.UTC().Format(time.RFC3339), roomName, filename)
}

// StreamWatermarkText is the shorter identity line used for streamed viewing.
func StreamWatermarkText(viewerEmail, ipAddress string, now time.Time) string {
	return fmt.Sprintf("%s - %s - %s", viewerEmail, ipAddress, now.UTC().Format("2006-01-02"))
}

// Stamp overlays identity across every page of src and returns the
// re-serialized document. Input that does not parse as a PDF yields
// ErrDocumentCorrupt and no partial output.
func (s *WatermarkStamper) Stamp(src []byte, identity string) ([]byte, error) {
	if len(src) == 0 {
		return nil, appErr.ErrDocumentCorrupt
	}

	rs := bytes.NewReader(src)
	dims, err := api.PageDims(rs, s.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrDocumentCorrupt, err)
	}
	if len(dims) == 0 {
		return nil, appErr.ErrDocumentCorrupt
	}

	overlays := make(map[int][]*pdfmodel.Watermark, len(dims))
	for i, dim := range dims {
		marks, err := s.pageOverlay(identity, dim)
		if err != nil {
			return nil, err
		}
		overlays[i+1] = marks
	}

	if _, err := rs.Seek(0, 0); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(rs, &out, overlays, s.conf); err != nil {
		return nil, fmt.Errorf("stamp watermark: %w", err)
	}
	return out.Bytes(), nil
}

// pageOverlay builds one watermark per grid cell, anchored at the page's
// bottom-left corner and offset in points.
func (s *WatermarkStamper) pageOverlay(identity string, dim types.Dim) ([]*pdfmodel.Watermark, error) {
	var marks []*pdfmodel.Watermark
	for y := -dim.Height; y < dim.Height*2; y += watermarkStepY {
		for x := -dim.Width; x < dim.Width*2; x += watermarkStepX {
			desc := fmt.Sprintf(
				"fontname:Helvetica, points:%d, scale:1 abs, rot:%d, op:%.2f, fillcolor:#8C8C8C, pos:bl, off:%.0f %.0f",
				watermarkPoints, watermarkRotation, watermarkOpacity, x, y)
			wm, err := api.TextWatermark(identity, desc, true, false, types.POINTS)
			if err != nil {
				return nil, fmt.Errorf("build watermark: %w", err)
			}
			marks = append(marks, wm)
		}
	}
	return marks, nil
}

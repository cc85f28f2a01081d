package service

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"

	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

// onePagePdf builds a minimal valid single-page PDF (catalog, page tree, one
// letter-sized page, empty content stream). Offsets for the xref table are
// computed while writing so the fixture never goes stale.
func onePagePdf() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 5)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>")
	content := "q Q"
	writeObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n0000000000 65535 f \n")
	for num := 1; num <= 4; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func TestStampWellFormedPdf(t *testing.T) {
	stamper := NewWatermarkStamper()
	src := onePagePdf()
	identity := StreamWatermarkText("viewer@example.com", "203.0.113.9", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

	out, err := stamper.Stamp(src, identity)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// The overlay content is baked in: the output is a different, larger
	// document with the same page count.
	require.NotEqual(t, src, out)
	require.Greater(t, len(out), len(src))

	count, err := api.PageCount(bytes.NewReader(out), stamper.conf)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStampRejectsNonPdfInput(t *testing.T) {
	stamper := NewWatermarkStamper()

	_, err := stamper.Stamp(nil, "viewer@example.com")
	require.ErrorIs(t, err, appErr.ErrDocumentCorrupt)

	_, err = stamper.Stamp([]byte("this is not a pdf"), "viewer@example.com")
	require.ErrorIs(t, err, appErr.ErrDocumentCorrupt)

	// A plausible header with garbage behind it still fails cleanly.
	_, err = stamper.Stamp([]byte("%PDF-1.7\ngarbage"), "viewer@example.com")
	require.ErrorIs(t, err, appErr.ErrDocumentCorrupt)
}

func TestPageOverlayCoversPage(t *testing.T) {
	stamper := NewWatermarkStamper()
	letter := types.Dim{Width: 612, Height: 792}

	marks, err := stamper.pageOverlay("viewer@example.com - 203.0.113.9 - 2026-01-15", letter)
	require.NoError(t, err)
	// The grid runs one page dimension past each edge in both directions.
	cols := 0
	for x := -letter.Width; x < letter.Width*2; x += watermarkStepX {
		cols++
	}
	rows := 0
	for y := -letter.Height; y < letter.Height*2; y += watermarkStepY {
		rows++
	}
	require.Len(t, marks, cols*rows)
	for _, wm := range marks {
		require.NotNil(t, wm)
		require.True(t, wm.OnTop)
	}
}

func TestWatermarkTexts(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	download := DownloadWatermarkText("viewer@example.com", "203.0.113.9", at, "Project Falcon", "deck.pdf")
	require.Equal(t, "viewer@example.com | 203.0.113.9 | 2026-01-15T10:30:00Z | Project Falcon | deck.pdf", download)

	stream := StreamWatermarkText("viewer@example.com", "203.0.113.9", at)
	require.Equal(t, "viewer@example.com - 203.0.113.9 - 2026-01-15", stream)
}

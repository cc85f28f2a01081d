package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type NdaStore interface {
	// ActiveTemplate returns the room's single active template, or
	// ErrNotFound when the room has none.
	ActiveTemplate(ctx context.Context, roomID string) (*model.NdaTemplate, error)
	HasAcceptance(ctx context.Context, linkID, viewerEmail, templateHash string) (bool, error)
	InsertAcceptance(ctx context.Context, acceptance *model.NdaAcceptance) error
}

// NdaService gates document access behind acceptance of the room's active
// agreement template. Acceptance is keyed by the template's content hash, so
// editing the template implicitly re-arms the gate for everyone.
type NdaService struct {
	store NdaStore
	md    goldmark.Markdown
	now   func() time.Time
}

func NewNdaService(store NdaStore) *NdaService {
	return &NdaService{
		store: store,
		md:    goldmark.New(),
		now:   time.Now,
	}
}

// TemplateHash is the stable content hash of a template; version bumps that
// do not change title or body keep old acceptances valid.
func TemplateHash(title, body string) string {
	sum := sha256.Sum256([]byte(title + "\n" + body))
	return hex.EncodeToString(sum[:])
}

func (s *NdaService) Required(link *model.SharedLink) bool {
	return link.RequireNDA
}

// Pending reports whether the viewer still has to accept before proceeding,
// along with the active template when one exists. A require-NDA link in a room
// without an active template does not block.
func (s *NdaService) Pending(ctx context.Context, link *model.SharedLink, viewerEmail string) (bool, *model.NdaTemplate, error) {
	if !link.RequireNDA {
		return false, nil, nil
	}
	template, err := s.store.ActiveTemplate(ctx, link.RoomID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return false, nil, nil
		}
		return false, nil, err
	}
	accepted, err := s.store.HasAcceptance(ctx, link.ID, NormalizeEmail(viewerEmail), template.TemplateHash)
	if err != nil {
		return false, nil, err
	}
	return !accepted, template, nil
}

// Accept records acceptance against the current active template. Re-accepting
// an already-satisfied gate is a no-op, reported via the first return so the
// caller can skip the audit write.
func (s *NdaService) Accept(ctx context.Context, link *model.SharedLink, viewerEmail, ipAddress, userAgent string) (bool, *model.NdaTemplate, error) {
	viewerEmail = NormalizeEmail(viewerEmail)
	template, err := s.store.ActiveTemplate(ctx, link.RoomID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return false, nil, nil
		}
		return false, nil, err
	}
	already, err := s.store.HasAcceptance(ctx, link.ID, viewerEmail, template.TemplateHash)
	if err != nil {
		return false, nil, err
	}
	if already {
		return false, template, nil
	}
	acceptance := &model.NdaAcceptance{
		ID:            uuid.NewString(),
		LinkID:        link.ID,
		NdaTemplateID: template.ID,
		ViewerEmail:   viewerEmail,
		TemplateHash:  template.TemplateHash,
		AcceptedAt:    s.now().Unix(),
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
	}
	if err := s.store.InsertAcceptance(ctx, acceptance); err != nil {
		return false, nil, fmt.Errorf("%w: insert nda acceptance: %v", appErr.ErrPersistence, err)
	}
	return true, template, nil
}

// RenderBody converts the markdown template body into HTML for display.
func (s *NdaService) RenderBody(template *model.NdaTemplate) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(template.Body), &buf); err != nil {
		return "", fmt.Errorf("render nda body: %w", err)
	}
	return buf.String(), nil
}

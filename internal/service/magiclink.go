package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/pkg/token"
)

// ViewerAuthTokenTTL bounds how long a magic link stays usable.
const ViewerAuthTokenTTL = 15 * time.Minute

type AuthTokenStore interface {
	// DeleteUnused removes pending tokens for (link, email) so at most one
	// live token exists per pair.
	DeleteUnused(ctx context.Context, linkID, viewerEmail string) error
	Create(ctx context.Context, t *model.ViewerAuthToken) error
	// MarkUsed atomically flips used_at for an unused, unexpired token with
	// the given hash. Returns false when no such row exists or another
	// request already consumed it.
	MarkUsed(ctx context.Context, linkID, viewerEmail, tokenHash string, now int64) (bool, error)
}

// MagicLinkService issues and consumes the single-use tokens that
// authenticate a viewer's email without a password.
type MagicLinkService struct {
	tokens AuthTokenStore
	now    func() time.Time
}

func NewMagicLinkService(tokens AuthTokenStore) *MagicLinkService {
	return &MagicLinkService{tokens: tokens, now: time.Now}
}

// NormalizeEmail canonicalizes viewer emails before they key anything.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue creates a fresh token for (link, email) and returns the raw value for
// out-of-band delivery. The raw value is never persisted; issuing supersedes
// any earlier unused token for the same pair.
func (s *MagicLinkService) Issue(ctx context.Context, link *model.SharedLink, viewerEmail string) (string, error) {
	viewerEmail = NormalizeEmail(viewerEmail)
	if viewerEmail == "" {
		return "", appErr.ErrInvalid
	}

	if err := s.tokens.DeleteUnused(ctx, link.ID, viewerEmail); err != nil {
		return "", fmt.Errorf("supersede pending tokens: %w", err)
	}

	raw := token.NewRaw()
	now := s.now()
	record := &model.ViewerAuthToken{
		ID:          uuid.NewString(),
		LinkID:      link.ID,
		ViewerEmail: viewerEmail,
		TokenHash:   token.Hash(raw),
		ExpiresAt:   now.Add(ViewerAuthTokenTTL).Unix(),
		Ctime:       now.Unix(),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", fmt.Errorf("%w: create auth token: %v", appErr.ErrPersistence, err)
	}
	return raw, nil
}

// Consume validates and spends a presented token. All failure modes (unknown,
// expired, superseded, already used, lost race) collapse into false so the
// caller cannot build an oracle over token state.
func (s *MagicLinkService) Consume(ctx context.Context, linkID, viewerEmail, rawToken string) (bool, error) {
	viewerEmail = NormalizeEmail(viewerEmail)
	rawToken = strings.TrimSpace(rawToken)
	if viewerEmail == "" || rawToken == "" {
		return false, nil
	}
	return s.tokens.MarkUsed(ctx, linkID, viewerEmail, token.Hash(rawToken), s.now().Unix())
}

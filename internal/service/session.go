package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/pkg/token"
)

// SessionTTL is judged at validation time; rows are never proactively
// deleted. Revoking a link does not shorten a session's TTL; the availability
// check at the gateway is what blocks a revoked link.
const SessionTTL = 24 * time.Hour

// SessionCookieName scopes the session cookie to one link so sessions are
// never shared across links.
func SessionCookieName(linkID string) string {
	return "visitor_session_" + linkID
}

// IdentityCookieName holds the base64url-encoded verified email, kept
// separate from the session cookie for watermarking and NDA lookups.
func IdentityCookieName(linkID string) string {
	return "visitor_identity_" + linkID
}

type AccessLogStore interface {
	Insert(ctx context.Context, entry *model.LinkAccessLog) error
	CountByViewer(ctx context.Context, linkID, viewerEmail string) (int64, error)
	// LatestByTokenHash returns the most recent row by started_at, or
	// ErrNotFound.
	LatestByTokenHash(ctx context.Context, linkID, tokenHash string) (*model.LinkAccessLog, error)
}

type CreatedSession struct {
	Token       string
	IsFirstOpen bool
}

// SessionService converts consumed magic links into viewer sessions and
// validates presented session cookies.
type SessionService struct {
	logs AccessLogStore
	now  func() time.Time
}

func NewSessionService(logs AccessLogStore) *SessionService {
	return &SessionService{logs: logs, now: time.Now}
}

// Create appends a new access-log row and returns the raw session token for
// the cookie. First open is computed before the insert so the new row never
// counts itself. Two concurrent first authentications may both observe zero
// prior rows; the worst case is a duplicate first-open notification.
func (s *SessionService) Create(ctx context.Context, link *model.SharedLink, viewerEmail, ipAddress, userAgent string) (*CreatedSession, error) {
	viewerEmail = NormalizeEmail(viewerEmail)

	prior, err := s.logs.CountByViewer(ctx, link.ID, viewerEmail)
	if err != nil {
		return nil, fmt.Errorf("count prior sessions: %w", err)
	}

	raw := token.NewRaw()
	now := s.now().Unix()
	entry := &model.LinkAccessLog{
		ID:               uuid.NewString(),
		LinkID:           link.ID,
		ViewerEmail:      viewerEmail,
		SessionTokenHash: token.Hash(raw),
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		StartedAt:        now,
		LastActiveAt:     now,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: insert access log: %v", appErr.ErrPersistence, err)
	}
	return &CreatedSession{Token: raw, IsFirstOpen: prior == 0}, nil
}

// Validate re-hashes the presented cookie value and checks the newest
// matching row against the TTL. Returns ErrUnauthorized for anything
// invalid; no detail about why.
func (s *SessionService) Validate(ctx context.Context, linkID, presentedToken string) (*model.LinkAccessLog, error) {
	if presentedToken == "" {
		return nil, appErr.ErrUnauthorized
	}
	entry, err := s.logs.LatestByTokenHash(ctx, linkID, token.Hash(presentedToken))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUnauthorized
		}
		return nil, err
	}
	if s.now().Sub(time.Unix(entry.StartedAt, 0)) >= SessionTTL {
		return nil, appErr.ErrUnauthorized
	}
	return entry, nil
}

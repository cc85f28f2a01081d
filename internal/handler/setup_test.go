package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
	"github.com/openvault/openvault/internal/service"
)

// In-memory fakes for every store the viewer flow touches, so the handler
// tests exercise the full request path without a database.

type fakeLinkStore struct {
	links []*model.SharedLink
}

func (s *fakeLinkStore) GetBySlug(_ context.Context, slug string) (*model.SharedLink, error) {
	for _, link := range s.links {
		if link.Slug == slug {
			return link, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeLinkStore) GetByID(_ context.Context, id string) (*model.SharedLink, error) {
	for _, link := range s.links {
		if link.ID == id {
			return link, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeLinkStore) IncrementViewCount(_ context.Context, id string) error {
	for _, link := range s.links {
		if link.ID == id {
			link.ViewCount++
			return nil
		}
	}
	return appErr.ErrNotFound
}

type fakeFolderStore struct {
	folders []*model.Folder
}

func (s *fakeFolderStore) ListByRoom(_ context.Context, roomID string) ([]*model.Folder, error) {
	var out []*model.Folder
	for _, folder := range s.folders {
		if folder.RoomID == roomID {
			out = append(out, folder)
		}
	}
	return out, nil
}

type fakeDocumentStore struct {
	docs []*model.Document
}

func (s *fakeDocumentStore) Get(_ context.Context, roomID, docID string) (*model.Document, error) {
	for _, doc := range s.docs {
		if doc.RoomID == roomID && doc.ID == docID && !doc.Deleted() {
			return doc, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeDocumentStore) ListByRoom(_ context.Context, roomID string) ([]*model.Document, error) {
	var out []*model.Document
	for _, doc := range s.docs {
		if doc.RoomID == roomID && !doc.Deleted() {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime < out[j].Ctime })
	return out, nil
}

func (s *fakeDocumentStore) ListByFolders(_ context.Context, roomID string, folderIDs []string) ([]*model.Document, error) {
	wanted := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}
	var out []*model.Document
	for _, doc := range s.docs {
		if doc.RoomID != roomID || doc.Deleted() || doc.FolderID == nil || !wanted[*doc.FolderID] {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime < out[j].Ctime })
	return out, nil
}

type fakeAuthTokenStore struct {
	rows []*model.ViewerAuthToken
}

func (s *fakeAuthTokenStore) DeleteUnused(_ context.Context, linkID, viewerEmail string) error {
	kept := s.rows[:0:0]
	for _, row := range s.rows {
		if row.LinkID == linkID && row.ViewerEmail == viewerEmail && row.UsedAt == nil {
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return nil
}

func (s *fakeAuthTokenStore) Create(_ context.Context, t *model.ViewerAuthToken) error {
	clone := *t
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeAuthTokenStore) MarkUsed(_ context.Context, linkID, viewerEmail, tokenHash string, now int64) (bool, error) {
	for _, row := range s.rows {
		if row.LinkID != linkID || row.ViewerEmail != viewerEmail || row.TokenHash != tokenHash {
			continue
		}
		if row.UsedAt != nil || row.ExpiresAt <= now {
			continue
		}
		used := now
		row.UsedAt = &used
		return true, nil
	}
	return false, nil
}

type fakeAccessLogStore struct {
	rows []*model.LinkAccessLog
}

func (s *fakeAccessLogStore) Insert(_ context.Context, entry *model.LinkAccessLog) error {
	clone := *entry
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeAccessLogStore) CountByViewer(_ context.Context, linkID, viewerEmail string) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if row.LinkID == linkID && row.ViewerEmail == viewerEmail {
			n++
		}
	}
	return n, nil
}

func (s *fakeAccessLogStore) LatestByTokenHash(_ context.Context, linkID, tokenHash string) (*model.LinkAccessLog, error) {
	var latest *model.LinkAccessLog
	for _, row := range s.rows {
		if row.LinkID != linkID || row.SessionTokenHash != tokenHash {
			continue
		}
		if latest == nil || row.StartedAt > latest.StartedAt {
			latest = row
		}
	}
	if latest == nil {
		return nil, appErr.ErrNotFound
	}
	return latest, nil
}

type fakeNdaStore struct {
	template    *model.NdaTemplate
	acceptances []*model.NdaAcceptance
}

func (s *fakeNdaStore) ActiveTemplate(_ context.Context, roomID string) (*model.NdaTemplate, error) {
	if s.template == nil || s.template.RoomID != roomID || !s.template.IsActive {
		return nil, appErr.ErrNotFound
	}
	return s.template, nil
}

func (s *fakeNdaStore) HasAcceptance(_ context.Context, linkID, viewerEmail, templateHash string) (bool, error) {
	for _, a := range s.acceptances {
		if a.LinkID == linkID && a.ViewerEmail == viewerEmail && a.TemplateHash == templateHash {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeNdaStore) InsertAcceptance(_ context.Context, acceptance *model.NdaAcceptance) error {
	clone := *acceptance
	s.acceptances = append(s.acceptances, &clone)
	return nil
}

type fakeAuditStore struct {
	events []*model.AuditEvent
}

func (s *fakeAuditStore) Insert(_ context.Context, event *model.AuditEvent) error {
	clone := *event
	s.events = append(s.events, &clone)
	return nil
}

func (s *fakeAuditStore) actions() []string {
	out := make([]string, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.Action)
	}
	return out
}

type fakeDownloadStore struct {
	events []*model.DownloadEvent
}

func (s *fakeDownloadStore) Insert(_ context.Context, event *model.DownloadEvent) error {
	clone := *event
	s.events = append(s.events, &clone)
	return nil
}

type fakePageViewStore struct {
	views []*model.DocumentPageView
}

func (s *fakePageViewStore) Insert(_ context.Context, view *model.DocumentPageView) error {
	clone := *view
	s.views = append(s.views, &clone)
	return nil
}

type fakeRoomStore struct {
	room       *model.DataRoom
	recipients []string
}

func (s *fakeRoomStore) Get(_ context.Context, roomID string) (*model.DataRoom, error) {
	if s.room == nil || s.room.ID != roomID {
		return nil, appErr.ErrNotFound
	}
	return s.room, nil
}

func (s *fakeRoomStore) RecipientEmails(_ context.Context, roomID string) ([]string, error) {
	return s.recipients, nil
}

type fakeNotificationStore struct {
	rows []*model.Notification
	sent []string
}

func (s *fakeNotificationStore) Insert(_ context.Context, n *model.Notification) error {
	clone := *n
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *fakeNotificationStore) MarkSent(_ context.Context, id string, sentAt int64) error {
	s.sent = append(s.sent, id)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Text    string
}

type fakeSender struct {
	mails []sentMail
}

func (s *fakeSender) Send(to, subject, html, text string) error {
	s.mails = append(s.mails, sentMail{To: to, Subject: subject, Text: text})
	return nil
}

type fakeLimiter struct {
	keys []string
	deny bool
}

func (l *fakeLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return !l.deny, nil
}

type fakeBlobStore struct {
	blobs map[string][]byte
}

func (s *fakeBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type testEnv struct {
	router        *gin.Engine
	links         *fakeLinkStore
	folders       *fakeFolderStore
	documents     *fakeDocumentStore
	authTokens    *fakeAuthTokenStore
	accessLogs    *fakeAccessLogStore
	ndas          *fakeNdaStore
	audits        *fakeAuditStore
	downloads     *fakeDownloadStore
	pageViews     *fakePageViewStore
	rooms         *fakeRoomStore
	notifications *fakeNotificationStore
	sender        *fakeSender
	limiter       *fakeLimiter
	blobs         *fakeBlobStore
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		links:         &fakeLinkStore{},
		folders:       &fakeFolderStore{},
		documents:     &fakeDocumentStore{},
		authTokens:    &fakeAuthTokenStore{},
		accessLogs:    &fakeAccessLogStore{},
		ndas:          &fakeNdaStore{},
		audits:        &fakeAuditStore{},
		downloads:     &fakeDownloadStore{},
		pageViews:     &fakePageViewStore{},
		rooms:         &fakeRoomStore{room: &model.DataRoom{ID: "r1", Name: "Project Falcon"}},
		notifications: &fakeNotificationStore{},
		sender:        &fakeSender{},
		limiter:       &fakeLimiter{},
		blobs:         &fakeBlobStore{blobs: map[string][]byte{}},
	}

	linkService := service.NewLinkService(env.links)
	scopeService := service.NewScopeService(env.folders, env.documents)
	magicService := service.NewMagicLinkService(env.authTokens)
	sessionService := service.NewSessionService(env.accessLogs)
	ndaService := service.NewNdaService(env.ndas)
	auditService := service.NewAuditService(env.audits)
	engagementService := service.NewEngagementService(env.downloads, env.pageViews)
	roomService := service.NewRoomService(env.rooms)
	notifyService := service.NewNotifyService(env.rooms, env.notifications, env.sender, "http://localhost:8080")

	viewer := NewViewerHandler(ViewerHandlerDeps{
		Links:           linkService,
		Magic:           magicService,
		Sessions:        sessionService,
		Nda:             ndaService,
		Scope:           scopeService,
		Audit:           auditService,
		Notify:          notifyService,
		Limiter:         env.limiter,
		Sender:          env.sender,
		BaseURL:         "http://localhost:8080",
		MagicLinkMax:    5,
		MagicLinkWindow: 15 * time.Minute,
	})
	documents := NewDocumentHandler(DocumentHandlerDeps{
		Links:      linkService,
		Sessions:   sessionService,
		Nda:        ndaService,
		Scope:      scopeService,
		Rooms:      roomService,
		Engagement: engagementService,
		Stamper:    service.NewWatermarkStamper(),
		Store:      env.blobs,
	})
	beacon := NewBeaconHandler(sessionService, engagementService)

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), RouterDeps{
		Viewer:    viewer,
		Documents: documents,
		Beacon:    beacon,
	})
	env.router = engine
	return env
}

func jsonBody(payload string) *strings.Reader {
	return strings.NewReader(payload)
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type DownloadEventStore interface {
	Insert(ctx context.Context, event *model.DownloadEvent) error
}

type PageViewStore interface {
	Insert(ctx context.Context, view *model.DocumentPageView) error
}

// EngagementService records per-viewer activity used by the owner-side
// analytics: downloads and per-page view durations.
type EngagementService struct {
	downloads DownloadEventStore
	pageViews PageViewStore
	now       func() time.Time
}

func NewEngagementService(downloads DownloadEventStore, pageViews PageViewStore) *EngagementService {
	return &EngagementService{downloads: downloads, pageViews: pageViews, now: time.Now}
}

func (s *EngagementService) RecordDownload(ctx context.Context, linkID, documentID, viewerEmail, sessionTokenHash, ipAddress, userAgent string) error {
	event := &model.DownloadEvent{
		ID:               uuid.NewString(),
		LinkID:           linkID,
		DocumentID:       documentID,
		ViewerEmail:      NormalizeEmail(viewerEmail),
		SessionTokenHash: sessionTokenHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		DownloadedAt:     s.now().Unix(),
	}
	if err := s.downloads.Insert(ctx, event); err != nil {
		return fmt.Errorf("%w: insert download event: %v", appErr.ErrPersistence, err)
	}
	return nil
}

func (s *EngagementService) RecordPageView(ctx context.Context, accessLogID, documentID string, pageNumber, durationSeconds int) error {
	if pageNumber <= 0 || durationSeconds <= 0 {
		return appErr.ErrInvalid
	}
	view := &model.DocumentPageView{
		ID:              uuid.NewString(),
		AccessLogID:     accessLogID,
		DocumentID:      documentID,
		PageNumber:      pageNumber,
		DurationSeconds: durationSeconds,
		ViewedAt:        s.now().Unix(),
	}
	if err := s.pageViews.Insert(ctx, view); err != nil {
		return fmt.Errorf("%w: insert page view: %v", appErr.ErrPersistence, err)
	}
	return nil
}

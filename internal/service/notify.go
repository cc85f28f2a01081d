package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/mail"
	"github.com/openvault/openvault/internal/model"
)

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	MarkSent(ctx context.Context, id string, sentAt int64) error
}

// NotifyService alerts room owners and admins when a link is opened for the
// first time by a given viewer. The notification row is the durable record;
// the email itself is best-effort.
type NotifyService struct {
	rooms         RoomStore
	notifications NotificationStore
	sender        mail.Sender
	baseURL       string
	now           func() time.Time
}

func NewNotifyService(rooms RoomStore, notifications NotificationStore, sender mail.Sender, baseURL string) *NotifyService {
	return &NotifyService{
		rooms:         rooms,
		notifications: notifications,
		sender:        sender,
		baseURL:       baseURL,
		now:           time.Now,
	}
}

func (s *NotifyService) FirstOpen(ctx context.Context, link *model.SharedLink, viewerEmail string) error {
	recipients, err := s.rooms.RecipientEmails(ctx, link.RoomID)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	openedAt := s.now().UTC().Format(time.RFC3339)
	linkLabel := link.Name
	if linkLabel == "" {
		linkLabel = link.Slug
	}
	linkURL := fmt.Sprintf("%s/v/%s", s.baseURL, link.Slug)
	subject := fmt.Sprintf("First open: %s viewed %s", viewerEmail, linkLabel)
	html := fmt.Sprintf(
		"<p>A shared link was opened for the first time.</p><ul><li><strong>Viewer:</strong> %s</li><li><strong>Link:</strong> %s</li><li><strong>Opened at:</strong> %s</li></ul><p><a href=%q>Open shared link</a></p>",
		viewerEmail, linkLabel, openedAt, linkURL)
	text := fmt.Sprintf("First open detected.\nViewer: %s\nLink: %s\nOpened at: %s\n%s",
		viewerEmail, linkLabel, openedAt, linkURL)

	for _, recipient := range recipients {
		record := &model.Notification{
			ID:             uuid.NewString(),
			RoomID:         link.RoomID,
			LinkID:         link.ID,
			EventType:      model.NotificationFirstOpen,
			RecipientEmail: recipient,
			Payload: map[string]interface{}{
				"viewer_email": viewerEmail,
				"opened_at":    openedAt,
				"slug":         link.Slug,
			},
			Ctime: s.now().Unix(),
		}
		if err := s.notifications.Insert(ctx, record); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		if err := s.sender.Send(recipient, subject, html, text); err != nil {
			logutil.GetLogger(ctx).Warn("first-open email failed",
				zap.String("recipient", recipient),
				zap.String("link_id", link.ID),
				zap.Error(err),
			)
			continue
		}
		if err := s.notifications.MarkSent(ctx, record.ID, s.now().Unix()); err != nil {
			logutil.GetLogger(ctx).Warn("mark notification sent failed",
				zap.String("notification_id", record.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

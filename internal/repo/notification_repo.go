package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":              n.ID,
		"room_id":         n.RoomID,
		"link_id":         n.LinkID,
		"event_type":      n.EventType,
		"recipient_email": n.RecipientEmail,
		"payload":         payload,
		"ctime":           n.Ctime,
		"sent_at":         n.SentAt,
	}
	sqlStr, args, err := builder.BuildInsert("notifications", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *NotificationRepo) MarkSent(ctx context.Context, id string, sentAt int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"sent_at": sentAt}
	sqlStr, args, err := builder.BuildUpdate("notifications", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, event *model.AuditEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":          event.ID,
		"room_id":     event.RoomID,
		"actor_id":    event.ActorID,
		"actor_type":  event.ActorType,
		"action":      event.Action,
		"target_type": event.TargetType,
		"target_id":   event.TargetID,
		"metadata":    metadata,
		"ctime":       event.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("audit_events", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type AccessLogRepo struct {
	db *sql.DB
}

func NewAccessLogRepo(db *sql.DB) *AccessLogRepo {
	return &AccessLogRepo{db: db}
}

func (r *AccessLogRepo) Insert(ctx context.Context, entry *model.LinkAccessLog) error {
	data := map[string]interface{}{
		"id":                 entry.ID,
		"link_id":            entry.LinkID,
		"viewer_email":       entry.ViewerEmail,
		"session_token_hash": entry.SessionTokenHash,
		"user_agent":         entry.UserAgent,
		"ip_address":         entry.IPAddress,
		"started_at":         entry.StartedAt,
		"last_active_at":     entry.LastActiveAt,
	}
	sqlStr, args, err := builder.BuildInsert("link_access_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AccessLogRepo) CountByViewer(ctx context.Context, linkID, viewerEmail string) (int64, error) {
	where := map[string]interface{}{
		"link_id":      linkID,
		"viewer_email": viewerEmail,
	}
	sqlStr, args, err := builder.BuildSelect("link_access_logs", where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var count int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AccessLogRepo) LatestByTokenHash(ctx context.Context, linkID, tokenHash string) (*model.LinkAccessLog, error) {
	where := map[string]interface{}{
		"link_id":            linkID,
		"session_token_hash": tokenHash,
		"_orderby":           "started_at desc",
		"_limit":             []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("link_access_logs", where, []string{
		"id", "link_id", "viewer_email", "session_token_hash",
		"user_agent", "ip_address", "started_at", "last_active_at",
	})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var entry model.LinkAccessLog
	if err := rows.Scan(&entry.ID, &entry.LinkID, &entry.ViewerEmail, &entry.SessionTokenHash,
		&entry.UserAgent, &entry.IPAddress, &entry.StartedAt, &entry.LastActiveAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

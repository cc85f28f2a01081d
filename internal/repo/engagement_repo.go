package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
)

type DownloadEventRepo struct {
	db *sql.DB
}

func NewDownloadEventRepo(db *sql.DB) *DownloadEventRepo {
	return &DownloadEventRepo{db: db}
}

func (r *DownloadEventRepo) Insert(ctx context.Context, event *model.DownloadEvent) error {
	data := map[string]interface{}{
		"id":                 event.ID,
		"link_id":            event.LinkID,
		"document_id":        event.DocumentID,
		"viewer_email":       event.ViewerEmail,
		"session_token_hash": event.SessionTokenHash,
		"ip_address":         event.IPAddress,
		"user_agent":         event.UserAgent,
		"downloaded_at":      event.DownloadedAt,
	}
	sqlStr, args, err := builder.BuildInsert("download_events", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

type PageViewRepo struct {
	db *sql.DB
}

func NewPageViewRepo(db *sql.DB) *PageViewRepo {
	return &PageViewRepo{db: db}
}

func (r *PageViewRepo) Insert(ctx context.Context, view *model.DocumentPageView) error {
	data := map[string]interface{}{
		"id":               view.ID,
		"access_log_id":    view.AccessLogID,
		"document_id":      view.DocumentID,
		"page_number":      view.PageNumber,
		"duration_seconds": view.DurationSeconds,
		"viewed_at":        view.ViewedAt,
	}
	sqlStr, args, err := builder.BuildInsert("document_page_views", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

var linkFields = []string{
	"id", "slug", "room_id", "scope", "folder_id", "document_id",
	"is_active", "expires_at", "max_views", "view_count",
	"allow_download", "require_email", "require_nda", "name", "ctime",
}

type LinkRepo struct {
	db *sql.DB
}

func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) GetBySlug(ctx context.Context, slug string) (*model.SharedLink, error) {
	return r.getOne(ctx, map[string]interface{}{"slug": slug})
}

func (r *LinkRepo) GetByID(ctx context.Context, id string) (*model.SharedLink, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id})
}

func (r *LinkRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.SharedLink, error) {
	sqlStr, args, err := builder.BuildSelect("shared_links", where, linkFields)
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
	return scanLink(rows)
}

func (r *LinkRepo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE shared_links SET view_count = view_count + 1 WHERE id = $1", id)
	return err
}

func scanLink(rows *sql.Rows) (*model.SharedLink, error) {
	var link model.SharedLink
	var folderID, documentID sql.NullString
	var expiresAt, maxViews sql.NullInt64
	if err := rows.Scan(
		&link.ID, &link.Slug, &link.RoomID, &link.Scope, &folderID, &documentID,
		&link.IsActive, &expiresAt, &maxViews, &link.ViewCount,
		&link.AllowDownload, &link.RequireEmail, &link.RequireNDA, &link.Name, &link.Ctime,
	); err != nil {
		return nil, err
	}
	if folderID.Valid {
		link.FolderID = &folderID.String
	}
	if documentID.Valid {
		link.DocumentID = &documentID.String
	}
	if expiresAt.Valid {
		link.ExpiresAt = &expiresAt.Int64
	}
	if maxViews.Valid {
		link.MaxViews = &maxViews.Int64
	}
	return &link, nil
}

package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

var documentFields = []string{
	"id", "room_id", "folder_id", "filename", "mime_type", "storage_path", "ctime", "deleted_at",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Get(ctx context.Context, roomID, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"room_id":    roomID,
		"id":         docID,
		"deleted_at": nil,
	}
	docs, err := r.list(ctx, where)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, appErr.ErrNotFound
	}
	return docs[0], nil
}

func (r *DocumentRepo) ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error) {
	return r.list(ctx, map[string]interface{}{
		"room_id":    roomID,
		"deleted_at": nil,
		"_orderby":   "ctime asc",
	})
}

func (r *DocumentRepo) ListByFolders(ctx context.Context, roomID string, folderIDs []string) ([]*model.Document, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, map[string]interface{}{
		"room_id":      roomID,
		"folder_id in": folderIDs,
		"deleted_at":   nil,
		"_orderby":     "ctime asc",
	})
}

func (r *DocumentRepo) list(ctx context.Context, where map[string]interface{}) ([]*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		var doc model.Document
		var folderID sql.NullString
		var deletedAt sql.NullInt64
		if err := rows.Scan(&doc.ID, &doc.RoomID, &folderID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Ctime, &deletedAt); err != nil {
			return nil, err
		}
		if folderID.Valid {
			doc.FolderID = &folderID.String
		}
		if deletedAt.Valid {
			doc.DeletedAt = &deletedAt.Int64
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

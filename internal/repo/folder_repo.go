package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
)

type FolderRepo struct {
	db *sql.DB
}

func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

// ListByRoom returns every folder in the room, deleted ones included: the
// scope resolver needs the full parent-pointer graph to walk defensively.
func (r *FolderRepo) ListByRoom(ctx context.Context, roomID string) ([]*model.Folder, error) {
	where := map[string]interface{}{"room_id": roomID}
	sqlStr, args, err := builder.BuildSelect("folders",
		where, []string{"id", "room_id", "parent_id", "name", "ctime", "deleted_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*model.Folder
	for rows.Next() {
		var folder model.Folder
		var parentID sql.NullString
		var deletedAt sql.NullInt64
		if err := rows.Scan(&folder.ID, &folder.RoomID, &parentID, &folder.Name, &folder.Ctime, &deletedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			folder.ParentID = &parentID.String
		}
		if deletedAt.Valid {
			folder.DeletedAt = &deletedAt.Int64
		}
		folders = append(folders, &folder)
	}
	return folders, rows.Err()
}

package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) Get(ctx context.Context, roomID string) (*model.DataRoom, error) {
	where := map[string]interface{}{"id": roomID}
	sqlStr, args, err := builder.BuildSelect("data_rooms", where, []string{"id", "owner_id", "name", "ctime"})
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
	var room model.DataRoom
	if err := rows.Scan(&room.ID, &room.OwnerID, &room.Name, &room.Ctime); err != nil {
		return nil, err
	}
	return &room, nil
}

// RecipientEmails resolves the owner and admin members to their profile
// emails for first-open notifications.
func (r *RoomRepo) RecipientEmails(ctx context.Context, roomID string) ([]string, error) {
	room, err := r.Get(ctx, roomID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	userIDs := map[string]bool{room.OwnerID: true}
	where := map[string]interface{}{
		"room_id": roomID,
		"role":    model.TeamRoleAdmin,
	}
	sqlStr, args, err := builder.BuildSelect("team_members", where, []string{"user_id"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs[userID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(userIDs))
	for id := range userIDs {
		ids = append(ids, id)
	}
	sqlStr, args, err = builder.BuildSelect("profiles",
		map[string]interface{}{"id in": ids}, []string{"email"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	profileRows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer profileRows.Close()

	seen := map[string]bool{}
	var emails []string
	for profileRows.Next() {
		var email string
		if err := profileRows.Scan(&email); err != nil {
			return nil, err
		}
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails, profileRows.Err()
}

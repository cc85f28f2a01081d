package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type NdaRepo struct {
	db *sql.DB
}

func NewNdaRepo(db *sql.DB) *NdaRepo {
	return &NdaRepo{db: db}
}

func (r *NdaRepo) ActiveTemplate(ctx context.Context, roomID string) (*model.NdaTemplate, error) {
	where := map[string]interface{}{
		"room_id":   roomID,
		"is_active": true,
	}
	sqlStr, args, err := builder.BuildSelect("nda_templates", where, []string{
		"id", "room_id", "title", "body", "version", "template_hash", "is_active", "ctime",
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
	var template model.NdaTemplate
	if err := rows.Scan(&template.ID, &template.RoomID, &template.Title, &template.Body,
		&template.Version, &template.TemplateHash, &template.IsActive, &template.Ctime); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *NdaRepo) HasAcceptance(ctx context.Context, linkID, viewerEmail, templateHash string) (bool, error) {
	where := map[string]interface{}{
		"link_id":       linkID,
		"viewer_email":  viewerEmail,
		"template_hash": templateHash,
	}
	sqlStr, args, err := builder.BuildSelect("nda_acceptances", where, []string{"count(*)"})
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var count int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *NdaRepo) InsertAcceptance(ctx context.Context, acceptance *model.NdaAcceptance) error {
	data := map[string]interface{}{
		"id":              acceptance.ID,
		"link_id":         acceptance.LinkID,
		"nda_template_id": acceptance.NdaTemplateID,
		"viewer_email":    acceptance.ViewerEmail,
		"template_hash":   acceptance.TemplateHash,
		"accepted_at":     acceptance.AcceptedAt,
		"ip_address":      acceptance.IPAddress,
		"user_agent":      acceptance.UserAgent,
	}
	sqlStr, args, err := builder.BuildInsert("nda_acceptances", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

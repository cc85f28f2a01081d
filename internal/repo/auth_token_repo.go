package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/openvault/openvault/internal/model"
	"github.com/openvault/openvault/internal/pkg/dbutil"
)

type AuthTokenRepo struct {
	db *sql.DB
}

func NewAuthTokenRepo(db *sql.DB) *AuthTokenRepo {
	return &AuthTokenRepo{db: db}
}

func (r *AuthTokenRepo) DeleteUnused(ctx context.Context, linkID, viewerEmail string) error {
	where := map[string]interface{}{
		"link_id":      linkID,
		"viewer_email": viewerEmail,
		"used_at":      nil,
	}
	sqlStr, args, err := builder.BuildDelete("viewer_auth_tokens", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AuthTokenRepo) Create(ctx context.Context, t *model.ViewerAuthToken) error {
	data := map[string]interface{}{
		"id":           t.ID,
		"link_id":      t.LinkID,
		"viewer_email": t.ViewerEmail,
		"token_hash":   t.TokenHash,
		"expires_at":   t.ExpiresAt,
		"used_at":      t.UsedAt,
		"ctime":        t.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("viewer_auth_tokens", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// MarkUsed is the single atomic transition in the magic-link lifecycle. The
// used_at IS NULL predicate makes concurrent consumption attempts race on one
// row update; exactly one wins.
func (r *AuthTokenRepo) MarkUsed(ctx context.Context, linkID, viewerEmail, tokenHash string, now int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE viewer_auth_tokens
		 SET used_at = $1
		 WHERE link_id = $2 AND viewer_email = $3 AND token_hash = $4
		   AND used_at IS NULL AND expires_at > $5`,
		now, linkID, viewerEmail, tokenHash, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

package model

// ViewerAuthToken is a single-use magic-link credential. Only the hash of the
// token is stored; UsedAt flips exactly once via a conditional update.
type ViewerAuthToken struct {
	ID          string `json:"id"`
	LinkID      string `json:"link_id"`
	ViewerEmail string `json:"viewer_email"`
	TokenHash   string `json:"token_hash"`
	ExpiresAt   int64  `json:"expires_at"`
	UsedAt      *int64 `json:"used_at"`
	Ctime       int64  `json:"ctime"`
}

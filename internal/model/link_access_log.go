package model

// LinkAccessLog doubles as the viewer session record: a session is valid while
// a row with a matching token hash is younger than the session TTL. Rows are
// append-only; re-authentication inserts a new row.
type LinkAccessLog struct {
	ID               string `json:"id"`
	LinkID           string `json:"link_id"`
	ViewerEmail      string `json:"viewer_email"`
	SessionTokenHash string `json:"session_token_hash"`
	UserAgent        string `json:"user_agent"`
	IPAddress        string `json:"ip_address"`
	StartedAt        int64  `json:"started_at"`
	LastActiveAt     int64  `json:"last_active_at"`
}

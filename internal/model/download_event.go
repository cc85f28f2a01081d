package model

type DownloadEvent struct {
	ID               string `json:"id"`
	LinkID           string `json:"link_id"`
	DocumentID       string `json:"document_id"`
	ViewerEmail      string `json:"viewer_email"`
	SessionTokenHash string `json:"session_token_hash"`
	IPAddress        string `json:"ip_address"`
	UserAgent        string `json:"user_agent"`
	DownloadedAt     int64  `json:"downloaded_at"`
}

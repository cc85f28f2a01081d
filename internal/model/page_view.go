package model

type DocumentPageView struct {
	ID              string `json:"id"`
	AccessLogID     string `json:"access_log_id"`
	DocumentID      string `json:"document_id"`
	PageNumber      int    `json:"page_number"`
	DurationSeconds int    `json:"duration_seconds"`
	ViewedAt        int64  `json:"viewed_at"`
}

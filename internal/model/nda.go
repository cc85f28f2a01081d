package model

type NdaTemplate struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Version      int    `json:"version"`
	TemplateHash string `json:"template_hash"`
	IsActive     bool   `json:"is_active"`
	Ctime        int64  `json:"ctime"`
}

// NdaAcceptance binds (link, viewer, template content hash). Editing the
// template changes the hash, so old acceptances stop satisfying the gate
// without being deleted.
type NdaAcceptance struct {
	ID            string `json:"id"`
	LinkID        string `json:"link_id"`
	NdaTemplateID string `json:"nda_template_id"`
	ViewerEmail   string `json:"viewer_email"`
	TemplateHash  string `json:"template_hash"`
	AcceptedAt    int64  `json:"accepted_at"`
	IPAddress     string `json:"ip_address"`
	UserAgent     string `json:"user_agent"`
}

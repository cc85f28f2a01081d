package model

const (
	LinkScopeRoom     = "room"
	LinkScopeFolder   = "folder"
	LinkScopeDocument = "document"
)

// SharedLink is a capability grant: whoever holds the slug may attempt the
// viewer flow against the scope it names. FolderID/DocumentID are set iff the
// scope targets a folder or a document respectively.
type SharedLink struct {
	ID            string  `json:"id"`
	Slug          string  `json:"slug"`
	RoomID        string  `json:"room_id"`
	Scope         string  `json:"scope"`
	FolderID      *string `json:"folder_id"`
	DocumentID    *string `json:"document_id"`
	IsActive      bool    `json:"is_active"`
	ExpiresAt     *int64  `json:"expires_at"`
	MaxViews      *int64  `json:"max_views"`
	ViewCount     int64   `json:"view_count"`
	AllowDownload bool    `json:"allow_download"`
	RequireEmail  bool    `json:"require_email"`
	RequireNDA    bool    `json:"require_nda"`
	Name          string  `json:"name"`
	Ctime         int64   `json:"ctime"`
}

package model

type Document struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"room_id"`
	FolderID    *string `json:"folder_id"`
	Filename    string  `json:"filename"`
	MimeType    string  `json:"mime_type"`
	StoragePath string  `json:"storage_path"`
	Ctime       int64   `json:"ctime"`
	DeletedAt   *int64  `json:"deleted_at"`
}

func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

package model

type Folder struct {
	ID        string  `json:"id"`
	RoomID    string  `json:"room_id"`
	ParentID  *string `json:"parent_id"`
	Name      string  `json:"name"`
	Ctime     int64   `json:"ctime"`
	DeletedAt *int64  `json:"deleted_at"`
}

func (f *Folder) Deleted() bool {
	return f.DeletedAt != nil
}

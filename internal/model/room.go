package model

type DataRoom struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Ctime   int64  `json:"ctime"`
}

const (
	TeamRoleAdmin  = "admin"
	TeamRoleViewer = "viewer"
)

type TeamMember struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

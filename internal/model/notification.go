package model

const NotificationFirstOpen = "link.first_open"

type Notification struct {
	ID             string                 `json:"id"`
	RoomID         string                 `json:"room_id"`
	LinkID         string                 `json:"link_id"`
	EventType      string                 `json:"event_type"`
	RecipientEmail string                 `json:"recipient_email"`
	Payload        map[string]interface{} `json:"payload"`
	Ctime          int64                  `json:"ctime"`
	SentAt         *int64                 `json:"sent_at"`
}

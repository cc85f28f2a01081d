package model

const (
	ActorTypeUser   = "user"
	ActorTypeViewer = "viewer"
	ActorTypeSystem = "system"
)

const (
	AuditMagicLinkRequested = "viewer.magic_link_requested"
	AuditNdaAccepted        = "viewer.nda_accepted"
)

type AuditEvent struct {
	ID         string                 `json:"id"`
	RoomID     string                 `json:"room_id"`
	ActorID    *string                `json:"actor_id"`
	ActorType  string                 `json:"actor_type"`
	Action     string                 `json:"action"`
	TargetType string                 `json:"target_type"`
	TargetID   *string                `json:"target_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	Ctime      int64                  `json:"ctime"`
}

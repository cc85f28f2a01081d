package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/openvault/openvault/internal/model"
)

type RoomStore interface {
	Get(ctx context.Context, roomID string) (*model.DataRoom, error)
	// RecipientEmails returns the owner's and admins' emails, deduplicated
	// and lower-cased.
	RecipientEmails(ctx context.Context, roomID string) ([]string, error)
}

// RoomService caches room names for the watermark/download path. Names change
// rarely; a short TTL keeps renames from lingering in stamped output.
type RoomService struct {
	store RoomStore
	names *expirable.LRU[string, string]
}

func NewRoomService(store RoomStore) *RoomService {
	return &RoomService{
		store: store,
		names: expirable.NewLRU[string, string](512, nil, 5*time.Minute),
	}
}

// Name returns the room's display name, falling back to a generic label when
// the room cannot be loaded. Watermarking must not fail on a missing name.
func (s *RoomService) Name(ctx context.Context, roomID string) string {
	if name, ok := s.names.Get(roomID); ok {
		return name
	}
	room, err := s.store.Get(ctx, roomID)
	if err != nil || room.Name == "" {
		return "Data Room"
	}
	s.names.Add(roomID, room.Name)
	return room.Name
}

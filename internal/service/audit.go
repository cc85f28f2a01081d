package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type AuditStore interface {
	Insert(ctx context.Context, event *model.AuditEvent) error
}

type AuditInput struct {
	RoomID     string
	ActorID    *string
	ActorType  string
	Action     string
	TargetType string
	TargetID   *string
	Metadata   map[string]interface{}
}

// AuditService appends security-relevant events. A failed write is an error
// for the surrounding operation: the audit trail is the evidence this system
// exists to produce, so it is never dropped silently.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) Write(ctx context.Context, input AuditInput) error {
	actorType := input.ActorType
	if actorType == "" {
		actorType = model.ActorTypeUser
	}
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	event := &model.AuditEvent{
		ID:         uuid.NewString(),
		RoomID:     input.RoomID,
		ActorID:    input.ActorID,
		ActorType:  actorType,
		Action:     input.Action,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Metadata:   metadata,
		Ctime:      s.now().Unix(),
	}
	if err := s.store.Insert(ctx, event); err != nil {
		return fmt.Errorf("%w: audit event %s: %v", appErr.ErrPersistence, input.Action, err)
	}
	return nil
}

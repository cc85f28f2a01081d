package service

import (
	"context"
	"fmt"

	"github.com/openvault/openvault/internal/model"
	appErr "github.com/openvault/openvault/internal/pkg/errors"
)

type LinkStore interface {
	GetBySlug(ctx context.Context, slug string) (*model.SharedLink, error)
	GetByID(ctx context.Context, id string) (*model.SharedLink, error)
	// IncrementViewCount bumps view_count by one in a single UPDATE.
	IncrementViewCount(ctx context.Context, id string) error
}

type LinkService struct {
	links LinkStore
}

func NewLinkService(links LinkStore) *LinkService {
	return &LinkService{links: links}
}

func (s *LinkService) BySlug(ctx context.Context, slug string) (*model.SharedLink, error) {
	return s.links.GetBySlug(ctx, slug)
}

func (s *LinkService) ByID(ctx context.Context, id string) (*model.SharedLink, error) {
	return s.links.GetByID(ctx, id)
}

// RecordView counts a successful authentication against the link's view
// quota. The increment is a plain UPDATE, not a transactional check-and-set:
// max-views is a soft limit, and two requests racing past the cap is
// accepted behavior.
func (s *LinkService) RecordView(ctx context.Context, linkID string) error {
	if err := s.links.IncrementViewCount(ctx, linkID); err != nil {
		return fmt.Errorf("%w: increment view count: %v", appErr.ErrPersistence, err)
	}
	return nil
}

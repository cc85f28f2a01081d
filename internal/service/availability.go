package service

import (
	"time"

	"github.com/openvault/openvault/internal/model"
)

const (
	AvailabilityInactive = "inactive"
	AvailabilityExpired  = "expired"
	AvailabilityMaxViews = "max_views"
)

type Availability struct {
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// EvaluateAvailability decides whether a link can be used right now. Checks
// short-circuit in order: revoked, expired, view cap. enforceMaxViews is true
// at the authentication gate (magic-link request, auth callback) and false for
// fetches belonging to an in-flight session, so an exhausted link blocks new
// sessions without cutting off ongoing reads.
func EvaluateAvailability(link *model.SharedLink, enforceMaxViews bool, now time.Time) Availability {
	if !link.IsActive {
		return Availability{
			Code:    AvailabilityInactive,
			Message: "This link has been revoked.",
		}
	}
	if link.ExpiresAt != nil && *link.ExpiresAt <= now.Unix() {
		return Availability{
			Code:    AvailabilityExpired,
			Message: "This link has expired.",
		}
	}
	if enforceMaxViews && link.MaxViews != nil && link.ViewCount >= *link.MaxViews {
		return Availability{
			Code:    AvailabilityMaxViews,
			Message: "This link has reached its maximum number of views.",
		}
	}
	return Availability{Allowed: true}
}

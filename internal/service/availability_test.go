package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvault/openvault/internal/model"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestEvaluateAvailability(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name            string
		link            model.SharedLink
		enforceMaxViews bool
		wantAllowed     bool
		wantCode        string
	}{
		{
			name:        "active link with no limits",
			link:        model.SharedLink{IsActive: true},
			wantAllowed: true,
		},
		{
			name:     "revoked link",
			link:     model.SharedLink{IsActive: false},
			wantCode: AvailabilityInactive,
		},
		{
			name:     "revoked wins over expired",
			link:     model.SharedLink{IsActive: false, ExpiresAt: int64Ptr(now.Unix() - 10)},
			wantCode: AvailabilityInactive,
		},
		{
			name:     "expired link",
			link:     model.SharedLink{IsActive: true, ExpiresAt: int64Ptr(now.Unix() - 1)},
			wantCode: AvailabilityExpired,
		},
		{
			name:     "expiry boundary is inclusive",
			link:     model.SharedLink{IsActive: true, ExpiresAt: int64Ptr(now.Unix())},
			wantCode: AvailabilityExpired,
		},
		{
			name:        "future expiry allowed",
			link:        model.SharedLink{IsActive: true, ExpiresAt: int64Ptr(now.Unix() + 60)},
			wantAllowed: true,
		},
		{
			name:            "view cap reached at the gate",
			link:            model.SharedLink{IsActive: true, MaxViews: int64Ptr(3), ViewCount: 3},
			enforceMaxViews: true,
			wantCode:        AvailabilityMaxViews,
		},
		{
			name:            "view cap not yet reached",
			link:            model.SharedLink{IsActive: true, MaxViews: int64Ptr(3), ViewCount: 2},
			enforceMaxViews: true,
			wantAllowed:     true,
		},
		{
			name:        "exhausted cap ignored for in-flight sessions",
			link:        model.SharedLink{IsActive: true, MaxViews: int64Ptr(3), ViewCount: 5},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateAvailability(&tt.link, tt.enforceMaxViews, now)
			require.Equal(t, tt.wantAllowed, got.Allowed)
			require.Equal(t, tt.wantCode, got.Code)
			if !tt.wantAllowed {
				require.NotEmpty(t, got.Message)
			}
		})
	}
}

func TestEvaluateAvailabilityMessages(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	revoked := EvaluateAvailability(&model.SharedLink{}, true, now)
	require.Equal(t, "This link has been revoked.", revoked.Message)

	expired := EvaluateAvailability(&model.SharedLink{IsActive: true, ExpiresAt: int64Ptr(0)}, true, now)
	require.Equal(t, "This link has expired.", expired.Message)

	capped := EvaluateAvailability(&model.SharedLink{IsActive: true, MaxViews: int64Ptr(1), ViewCount: 1}, true, now)
	require.Equal(t, "This link has reached its maximum number of views.", capped.Message)
}

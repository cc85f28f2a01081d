package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/openvault/openvault/internal/ratelimit"
)

// RateLimitSweepJob evicts fully-aged keys from the in-process rate limiter
// so a long-lived server does not accumulate one timestamp list per viewer
// email ever seen.
type RateLimitSweepJob struct {
	limiter *ratelimit.MemoryLimiter
	maxAge  time.Duration
}

func NewRateLimitSweepJob(limiter *ratelimit.MemoryLimiter, maxAge time.Duration) *RateLimitSweepJob {
	return &RateLimitSweepJob{limiter: limiter, maxAge: maxAge}
}

func (j *RateLimitSweepJob) Name() string {
	return "ratelimit_sweep"
}

func (j *RateLimitSweepJob) Run(ctx context.Context) error {
	if j.limiter == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	evicted := j.limiter.Sweep(maxAge)
	if evicted > 0 {
		logutil.GetLogger(ctx).Info("rate limiter sweep", zap.Int("evicted", evicted))
	}
	return nil
}

// Package ratelimit throttles abusable viewer-facing operations, primarily
// magic-link issuance. Two backends exist: an in-process sliding window for
// single-instance deployments and a redis fixed window for horizontal
// scale-out. The in-process backend under-counts globally when more than one
// replica serves traffic.
package ratelimit

import (
	"context"
	"time"
)

// Limiter reports whether the caller identified by key has exceeded max
// requests within the trailing window. A true result means the request is
// allowed and has been recorded; a false result records nothing.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error)
}

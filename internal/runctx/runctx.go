// Package runctx carries the identity of a fleet run through a context.
package runctx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// RunContext identifies one fleet run
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRun attaches a fresh run identity to ctx
func WithRun(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	})
}

// FromContext returns the run identity, or an "unknown" one outside a run
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

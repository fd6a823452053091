package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Resolver computes a user's current membership level. A user may hold
// several overlapping records; the level with the highest rank wins, and a
// user with no covering record falls back to the default level.
type Resolver struct {
	store ResolverStore
	now   func() time.Time
}

// ResolverStore is the read surface the resolver needs. *Store satisfies it;
// tests substitute in-memory fakes.
type ResolverStore interface {
	FindCoveringLevels(ctx context.Context, userID uuid.UUID, at time.Time) ([]Level, error)
	GetDefaultLevel(ctx context.Context) (*Level, error)
}

// NewResolver creates a membership resolver.
func NewResolver(store ResolverStore) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Current returns the user's effective level right now.
func (r *Resolver) Current(ctx context.Context, userID uuid.UUID) (*Level, error) {
	levels, err := r.store.FindCoveringLevels(ctx, userID, r.now().UTC())
	if err != nil {
		return nil, err
	}

	var best *Level
	for i := range levels {
		if best == nil || levels[i].Rank > best.Rank {
			best = &levels[i]
		}
	}
	if best != nil {
		return best, nil
	}

	return r.store.GetDefaultLevel(ctx)
}

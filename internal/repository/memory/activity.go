package memory

import (
	"context"
	"sync"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
)

// ActivityRepository keeps the newest entries in memory. It backs the audit
// trail when Postgres is disabled.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []domain.Activity
	max     int
}

// NewActivityRepository keeps at most max entries (1000 when max < 1).
func NewActivityRepository(max int) *ActivityRepository {
	if max < 1 {
		max = 1000
	}
	return &ActivityRepository{max: max}
}

// Append stores an entry, evicting the oldest beyond capacity.
func (r *ActivityRepository) Append(_ context.Context, a domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, a)
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = append([]domain.Activity(nil), r.entries[over:]...)
	}
	return nil
}

// ListByOwner returns the owner's newest entries first.
func (r *ActivityRepository) ListByOwner(_ context.Context, owner string, limit int) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Activity{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].Owner == owner {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

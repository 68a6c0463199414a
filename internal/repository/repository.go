package repository

import (
	"context"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
)

// DraftSlot names one stored copy of a draft.
type DraftSlot string

const (
	// SlotDraft is the durable base-step draft, kept in create mode only.
	SlotDraft DraftSlot = "ADD_PRODUCT_FORM_DATA"
	// SlotHandoff carries the validated base step to the metadata step.
	SlotHandoff DraftSlot = "NEW_PRODUCT_BASE"
)

// DraftRepository stores drafts per owner, slot and scope. The scope is
// "create" or the id of the product being edited.
type DraftRepository interface {
	// Get returns ErrNotFound when nothing is stored.
	Get(ctx context.Context, owner string, slot DraftSlot, scope string) (domain.Draft, error)

	// Save overwrites the stored draft and refreshes its expiry.
	Save(ctx context.Context, owner string, slot DraftSlot, scope string, d domain.Draft) error

	// Delete removes one slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, owner string, slot DraftSlot, scope string) error

	// Clear removes every slot of a scope at once.
	Clear(ctx context.Context, owner, scope string) error
}

// SessionRepository stores intake wizard sessions.
type SessionRepository interface {
	// Get returns ErrNotFound when the owner has no session for scope.
	Get(ctx context.Context, owner, scope string) (*domain.IntakeSession, error)
	Save(ctx context.Context, s *domain.IntakeSession) error
	Delete(ctx context.Context, owner, scope string) error
}

// ActivityRepository is the append-only intake audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, a domain.Activity) error

	// ListByOwner returns the newest entries first.
	ListByOwner(ctx context.Context, owner string, limit int) ([]domain.Activity, error)
}

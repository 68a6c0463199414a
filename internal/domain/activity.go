package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAction names an entry in the intake audit trail.
type ActivityAction string

const (
	ActionStepNext       ActivityAction = "step_next"
	ActionStepPrevious   ActivityAction = "step_previous"
	ActionSubmitted      ActivityAction = "submitted"
	ActionSubmitFailed   ActivityAction = "submit_failed"
	ActionDraftCleared   ActivityAction = "draft_cleared"
	ActionProductDeleted ActivityAction = "product_deleted"
)

// Activity is one audit trail entry.
type Activity struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner"`
	Action    ActivityAction `json:"action"`
	Mode      Mode           `json:"mode,omitempty"`
	ProductID string         `json:"productId,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewActivity stamps a new entry with a fresh id.
func NewActivity(owner string, action ActivityAction, mode Mode, productID, detail string) Activity {
	return Activity{
		ID:        uuid.NewString(),
		Owner:     owner,
		Action:    action,
		Mode:      mode,
		ProductID: productID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

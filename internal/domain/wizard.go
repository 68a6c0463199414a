package domain

import (
	"fmt"
	"time"

	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

// WizardState is a state of the product intake wizard.
type WizardState string

const (
	StateEditingBase     WizardState = "editing_base"
	StateEditingMetadata WizardState = "editing_metadata"
	StateSubmitting      WizardState = "submitting"
	StateDone            WizardState = "done"
	StateFailed          WizardState = "failed"
)

// WizardEvent drives a state transition.
type WizardEvent string

const (
	EventNext     WizardEvent = "next"
	EventPrevious WizardEvent = "previous"
	EventSubmit   WizardEvent = "submit"
	EventAccepted WizardEvent = "accepted"
	EventRejected WizardEvent = "rejected"
	EventEdit     WizardEvent = "edit"
	EventReset    WizardEvent = "reset"
)

var transitions = map[WizardState]map[WizardEvent]WizardState{
	StateEditingBase: {
		EventNext:  StateEditingMetadata,
		EventReset: StateEditingBase,
	},
	StateEditingMetadata: {
		EventPrevious: StateEditingBase,
		EventSubmit:   StateSubmitting,
		EventReset:    StateEditingBase,
	},
	StateSubmitting: {
		EventAccepted: StateDone,
		EventRejected: StateFailed,
	},
	StateFailed: {
		EventEdit:     StateEditingMetadata,
		EventSubmit:   StateSubmitting,
		EventPrevious: StateEditingBase,
		EventReset:    StateEditingBase,
	},
	StateDone: {
		EventReset: StateEditingBase,
	},
}

// Next returns the state reached from s on e, or a conflict error when e is
// not allowed in s.
func (s WizardState) Next(e WizardEvent) (WizardState, error) {
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return s, apperrors.Conflict(fmt.Sprintf("cannot %s while wizard is %s", e, s))
}

// SubmitStaleAfter bounds how long a wizard may stay submitting. It outlasts
// the request timeout, so a wizard still submitting past it lost its request.
const SubmitStaleAfter = 2 * time.Minute

// StaleSubmitReason is shown when an interrupted submission is recovered.
const StaleSubmitReason = "The previous submission did not complete. Please submit again."

// Mode distinguishes creating a product from editing an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// IntakeSession is the wizard owned by one admin for one product. ProductID
// is empty in create mode. Media is the upload session: the files staged
// for submission, by slot.
type IntakeSession struct {
	Owner     string                 `json:"owner"`
	Mode      Mode                   `json:"mode"`
	ProductID string                 `json:"productId,omitempty"`
	State     WizardState            `json:"state"`
	Reason    string                 `json:"reason,omitempty"`
	Media     map[string]MediaHandle `json:"media"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// NewIntakeSession opens a wizard on the base step.
func NewIntakeSession(owner string, mode Mode, productID string) *IntakeSession {
	return &IntakeSession{
		Owner:     owner,
		Mode:      mode,
		ProductID: productID,
		State:     StateEditingBase,
		Media:     make(map[string]MediaHandle),
		UpdatedAt: time.Now().UTC(),
	}
}

// Scope is the key suffix distinguishing the create wizard from each edit.
func (s *IntakeSession) Scope() string {
	if s.Mode == ModeEdit {
		return s.ProductID
	}
	return string(ModeCreate)
}

// Apply moves the session on e. reason is kept only for the failed state.
func (s *IntakeSession) Apply(e WizardEvent, reason string) error {
	to, err := s.State.Next(e)
	if err != nil {
		return err
	}
	s.State = to
	s.Reason = ""
	if to == StateFailed {
		s.Reason = reason
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RecoverStale moves a wizard stuck submitting since before
// now-SubmitStaleAfter to failed. It reports whether the session changed.
func (s *IntakeSession) RecoverStale(now time.Time) bool {
	if s.State != StateSubmitting || now.Sub(s.UpdatedAt) < SubmitStaleAfter {
		return false
	}
	return s.Apply(EventRejected, StaleSubmitReason) == nil
}

// OnMetadataStep reports whether the metadata step is showing.
func (s *IntakeSession) OnMetadataStep() bool {
	return s.State == StateEditingMetadata || s.State == StateFailed
}

package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizard_HappyPath(t *testing.T) {
	s := NewIntakeSession("admin-1", ModeCreate, "")
	assert.Equal(t, StateEditingBase, s.State)
	assert.Equal(t, "create", s.Scope())

	require.NoError(t, s.Apply(EventNext, ""))
	assert.True(t, s.OnMetadataStep())
	require.NoError(t, s.Apply(EventSubmit, ""))
	require.NoError(t, s.Apply(EventAccepted, ""))
	assert.Equal(t, StateDone, s.State)
}

func TestWizard_RejectionKeepsReasonUntilEdit(t *testing.T) {
	s := NewIntakeSession("admin-1", ModeEdit, "p1")
	assert.Equal(t, "p1", s.Scope())

	require.NoError(t, s.Apply(EventNext, ""))
	require.NoError(t, s.Apply(EventSubmit, ""))
	require.NoError(t, s.Apply(EventRejected, "This sku is already in use"))
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, "This sku is already in use", s.Reason)
	assert.True(t, s.OnMetadataStep())

	require.NoError(t, s.Apply(EventEdit, ""))
	assert.Equal(t, StateEditingMetadata, s.State)
	assert.Empty(t, s.Reason)
}

func TestWizard_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from  WizardState
		event WizardEvent
	}{
		{StateEditingBase, EventSubmit},
		{StateEditingBase, EventPrevious},
		{StateEditingMetadata, EventNext},
		{StateSubmitting, EventSubmit},
		{StateSubmitting, EventReset},
		{StateDone, EventSubmit},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			to, err := tt.from.Next(tt.event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrConflict))
			assert.Equal(t, tt.from, to)
		})
	}
}

func TestWizard_EditOnlyLeavesFailed(t *testing.T) {
	for _, from := range []WizardState{StateEditingBase, StateEditingMetadata, StateSubmitting, StateDone} {
		_, err := from.Next(EventEdit)
		assert.True(t, errors.Is(err, apperrors.ErrConflict), from)
	}
}

func TestIntakeSession_RecoverStale(t *testing.T) {
	s := NewIntakeSession("admin-1", ModeCreate, "")
	require.NoError(t, s.Apply(EventNext, ""))
	require.NoError(t, s.Apply(EventSubmit, ""))
	started := s.UpdatedAt

	assert.False(t, s.RecoverStale(started.Add(SubmitStaleAfter/2)))
	assert.Equal(t, StateSubmitting, s.State)

	assert.True(t, s.RecoverStale(started.Add(SubmitStaleAfter)))
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, StaleSubmitReason, s.Reason)

	assert.False(t, s.RecoverStale(started.Add(time.Hour)), "only a submitting wizard is recovered")
}

func TestWizard_PreviousFromMetadata(t *testing.T) {
	to, err := StateEditingMetadata.Next(EventPrevious)
	require.NoError(t, err)
	assert.Equal(t, StateEditingBase, to)
}

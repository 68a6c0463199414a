package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/slug"
)

// DraftStore is the staged form state of the intake wizard: the durable
// base-step draft plus the handoff read by the metadata step.
type DraftStore struct {
	repo repository.DraftRepository
}

// NewDraftStore creates a new draft store.
func NewDraftStore(repo repository.DraftRepository) *DraftStore {
	return &DraftStore{repo: repo}
}

// Get returns the durable draft, or nil when there is none.
func (s *DraftStore) Get(ctx context.Context, owner, scope string) (domain.Draft, error) {
	d, err := s.repo.Get(ctx, owner, repository.SlotDraft, scope)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

// Set shallow-merges partial into the durable draft and persists it.
func (s *DraftStore) Set(ctx context.Context, owner, scope string, partial domain.Draft) (domain.Draft, error) {
	cur, err := s.Get(ctx, owner, scope)
	if err != nil {
		return nil, err
	}
	next := ApplyPartial(cur, partial)
	if err := s.Save(ctx, owner, scope, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Save persists d as the durable draft.
func (s *DraftStore) Save(ctx context.Context, owner, scope string, d domain.Draft) error {
	if err := s.repo.Save(ctx, owner, repository.SlotDraft, scope, d); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Clear drops the draft and the handoff.
func (s *DraftStore) Clear(ctx context.Context, owner, scope string) error {
	if err := s.repo.Clear(ctx, owner, scope); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// Discard drops the durable draft only.
func (s *DraftStore) Discard(ctx context.Context, owner, scope string) error {
	if err := s.repo.Delete(ctx, owner, repository.SlotDraft, scope); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}

// PutHandoff stores the validated base step for the metadata step.
func (s *DraftStore) PutHandoff(ctx context.Context, owner, scope string, d domain.Draft) error {
	if err := s.repo.Save(ctx, owner, repository.SlotHandoff, scope, d); err != nil {
		return fmt.Errorf("save handoff: %w", err)
	}
	return nil
}

// Handoff returns the base step handed to the metadata step. It is
// ErrNotFound when the base step was never completed or has expired.
func (s *DraftStore) Handoff(ctx context.Context, owner, scope string) (domain.Draft, error) {
	d, err := s.repo.Get(ctx, owner, repository.SlotHandoff, scope)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("base step data", scope)
		}
		return nil, fmt.Errorf("get handoff: %w", err)
	}
	return d, nil
}

// ApplyPartial merges partial over cur. Derived measures and media slots in
// partial are ignored; oz and inch are recomputed, flags default to "no" and
// a blank slug is suggested from the name.
func ApplyPartial(cur, partial domain.Draft) domain.Draft {
	if cur == nil {
		cur = domain.Draft{}
		for _, flag := range domain.FlagFields {
			cur[flag] = "no"
		}
	}

	next := cur.Merge(partial.Without(append([]string{"oz", "inch"}, domain.MediaSlots...)...))
	next = domain.DeriveMeasures(next)

	if next.Has("name") && strings.TrimSpace(next.String("slug")) == "" {
		next["slug"] = slug.Generate(next.String("name"))
	}
	return next
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

const keyPrefix = "intake:"

func draftKey(owner string, slot repository.DraftSlot, scope string) string {
	return keyPrefix + owner + ":" + string(slot) + ":" + scope
}

// DraftRepository implements repository.DraftRepository using Redis. The
// durable draft and the step handoff expire independently.
type DraftRepository struct {
	client     *redis.Client
	draftTTL   time.Duration
	handoffTTL time.Duration
}

// NewDraftRepository creates a new Redis-backed draft repository.
func NewDraftRepository(client *redis.Client, draftTTL, handoffTTL time.Duration) *DraftRepository {
	return &DraftRepository{client: client, draftTTL: draftTTL, handoffTTL: handoffTTL}
}

func (r *DraftRepository) ttl(slot repository.DraftSlot) time.Duration {
	if slot == repository.SlotHandoff {
		return r.handoffTTL
	}
	return r.draftTTL
}

// Get retrieves a stored draft.
func (r *DraftRepository) Get(ctx context.Context, owner string, slot repository.DraftSlot, scope string) (domain.Draft, error) {
	data, err := r.client.Get(ctx, draftKey(owner, slot, scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound(string(slot), scope)
		}
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	if d == nil {
		d = domain.Draft{}
	}
	return d, nil
}

// Save persists a draft with the slot's TTL.
func (r *DraftRepository) Save(ctx context.Context, owner string, slot repository.DraftSlot, scope string, d domain.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(owner, slot, scope), data, r.ttl(slot)).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

// Delete removes one slot.
func (r *DraftRepository) Delete(ctx context.Context, owner string, slot repository.DraftSlot, scope string) error {
	if err := r.client.Del(ctx, draftKey(owner, slot, scope)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}

// Clear removes the draft and the handoff in one transaction.
func (r *DraftRepository) Clear(ctx context.Context, owner, scope string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx,
			draftKey(owner, repository.SlotDraft, scope),
			draftKey(owner, repository.SlotHandoff, scope),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear drafts: %w", err)
	}
	return nil
}

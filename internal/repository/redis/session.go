package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

const sessionSlot = "INTAKE_SESSION"

func sessionKey(owner, scope string) string {
	return keyPrefix + owner + ":" + sessionSlot + ":" + scope
}

// SessionRepository implements repository.SessionRepository using Redis.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

// Get retrieves a wizard session.
func (r *SessionRepository) Get(ctx context.Context, owner, scope string) (*domain.IntakeSession, error) {
	data, err := r.client.Get(ctx, sessionKey(owner, scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("intake session", scope)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s domain.IntakeSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.Media == nil {
		s.Media = make(map[string]domain.MediaHandle)
	}
	return &s, nil
}

// Save persists a wizard session.
func (r *SessionRepository) Save(ctx context.Context, s *domain.IntakeSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.Owner, s.Scope()), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes a wizard session.
func (r *SessionRepository) Delete(ctx context.Context, owner, scope string) error {
	if err := r.client.Del(ctx, sessionKey(owner, scope)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

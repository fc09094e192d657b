package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
)

// SessionStore is the slice of the redis client the cart service needs.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service persists cart snapshots per user session so a cart survives page
// loads. The snapshot is a cache of the in-memory store, never a pricing
// source of truth: totals are recomputed from the restored state.
type Service struct {
	sessions SessionStore
	ttl      time.Duration
}

// NewService wires the cart session service.
func NewService(sessions SessionStore, ttl time.Duration) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &Service{sessions: sessions, ttl: ttl}, nil
}

// Save stores the current snapshot for the user.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, snap Snapshot) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart snapshot")
	}
	if err := s.sessions.Set(ctx, redis.CartKey(userID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

// Load restores the persisted snapshot into the provided store. Returns
// false when no snapshot exists.
func (s *Service) Load(ctx context.Context, userID uuid.UUID, store *Store) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	raw, err := s.sessions.Get(ctx, redis.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// A corrupt snapshot is treated as no cart rather than a hard error.
		return false, nil
	}
	store.restore(snap)
	return true, nil
}

// Clear removes the persisted snapshot, called after a successful commit.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.sessions.Del(ctx, redis.CartKey(userID.String()), redis.WizardKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}

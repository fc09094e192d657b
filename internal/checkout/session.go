package checkout

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

// SessionStore is the slice of the redis client the wizard session needs.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Sessions persists the wizard state per user so an in-progress checkout
// survives page loads. The state is restored through Restore, which clamps
// anything a stale snapshot could carry out of range.
type Sessions struct {
	store SessionStore
	ttl   time.Duration
}

// NewSessions wires the wizard session store.
func NewSessions(store SessionStore, ttl time.Duration) (*Sessions, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &Sessions{store: store, ttl: ttl}, nil
}

// Save stores the wizard state for the user.
func (s *Sessions) Save(ctx context.Context, userID uuid.UUID, wizard *Wizard) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	payload, err := json.Marshal(wizard.State())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal wizard state")
	}
	if err := s.store.Set(ctx, redis.WizardKey(userID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wizard state")
	}
	return nil
}

// Load restores the persisted wizard for the user. Returns a fresh wizard
// when no snapshot exists or the snapshot is corrupt.
func (s *Sessions) Load(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	raw, err := s.store.Get(ctx, redis.WizardKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return NewWizard(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wizard state")
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return NewWizard(), nil
	}
	return Restore(state), nil
}

// Clear drops the persisted wizard state.
func (s *Sessions) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.store.Del(ctx, redis.WizardKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear wizard state")
	}
	return nil
}

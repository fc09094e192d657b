package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
)

type stubSessionStore struct {
	data map[string]string
}

func (s *stubSessionStore) Get(ctx context.Context, key string) (string, error) {
	raw, ok := s.data[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return raw, nil
}

func (s *stubSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.data == nil {
		s.data = map[string]string{}
	}
	s.data[key] = string(value.([]byte))
	return nil
}

func (s *stubSessionStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func TestSessionsRoundTrip(t *testing.T) {
	t.Parallel()

	store := &stubSessionStore{}
	sessions, err := NewSessions(store, time.Hour)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	userID := uuid.New()

	wizard := NewWizard()
	if err := wizard.SetDeliveryMode(enums.DeliveryModePickup); err != nil {
		t.Fatalf("SetDeliveryMode: %v", err)
	}
	if err := wizard.Next(NextInput{}); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if err := sessions.Save(context.Background(), userID, wizard); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := sessions.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Current() != StepChoosePayment {
		t.Fatalf("restored step = %s", restored.Current())
	}
	if restored.State().DeliveryMode != enums.DeliveryModePickup {
		t.Fatalf("restored mode = %s", restored.State().DeliveryMode)
	}
}

func TestLoadMissingStateReturnsFreshWizard(t *testing.T) {
	t.Parallel()

	sessions, _ := NewSessions(&stubSessionStore{}, time.Hour)
	wizard, err := sessions.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wizard.Current() != StepChooseMode {
		t.Fatalf("fresh wizard step = %s", wizard.Current())
	}
}

func TestLoadCorruptStateReturnsFreshWizard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := &stubSessionStore{data: map[string]string{
		redis.WizardKey(userID.String()): "{not json",
	}}
	sessions, _ := NewSessions(store, time.Hour)

	wizard, err := sessions.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wizard.Current() != StepChooseMode {
		t.Fatalf("fresh wizard step = %s", wizard.Current())
	}
}

func TestClearRemovesState(t *testing.T) {
	t.Parallel()

	store := &stubSessionStore{}
	sessions, _ := NewSessions(store, time.Hour)
	userID := uuid.New()

	if err := sessions.Save(context.Background(), userID, NewWizard()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := sessions.Clear(context.Background(), userID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.data[redis.WizardKey(userID.String())]; ok {
		t.Fatal("wizard key must be removed")
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
)

type stubPublisher struct {
	channel string
	payload []byte
	err     error
}

func (s *stubPublisher) Publish(ctx context.Context, channel string, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.channel = channel
	s.payload = payload.([]byte)
	return nil
}

func TestOrderCreatedPublishesToTenantChannel(t *testing.T) {
	t.Parallel()

	stub := &stubPublisher{}
	pub, err := NewPublisher(stub)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	order := &models.Order{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Status:   enums.OrderStatusPending,
	}

	if err := pub.OrderCreated(context.Background(), order); err != nil {
		t.Fatalf("OrderCreated: %v", err)
	}

	if !strings.Contains(stub.channel, order.TenantID.String()) {
		t.Fatalf("channel %q must be tenant scoped", stub.channel)
	}
	var event Event
	if err := json.Unmarshal(stub.payload, &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.Kind != EventOrderCreated || event.OrderID != order.ID {
		t.Fatalf("event = %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("event must carry a timestamp")
	}
}

func TestOrderStatusChangedCarriesStatus(t *testing.T) {
	t.Parallel()

	stub := &stubPublisher{}
	pub, _ := NewPublisher(stub)
	order := &models.Order{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Status:   enums.OrderStatusOutForDelivery,
	}

	if err := pub.OrderStatusChanged(context.Background(), order); err != nil {
		t.Fatalf("OrderStatusChanged: %v", err)
	}
	var event Event
	json.Unmarshal(stub.payload, &event)
	if event.Status != enums.OrderStatusOutForDelivery {
		t.Fatalf("status = %s", event.Status)
	}
}

func TestPublishRejectsNilOrder(t *testing.T) {
	t.Parallel()

	pub, _ := NewPublisher(&stubPublisher{})
	if err := pub.OrderCreated(context.Background(), nil); err == nil {
		t.Fatal("nil order must error")
	}
}

// Package realtime pushes order events over redis pub/sub so storefront
// order tracking and the admin order board refresh without polling. The
// channel is per tenant; pricing correctness never depends on delivery.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
)

// Event kinds carried on the tenant channel.
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// Event is the wire payload.
type Event struct {
	Kind      string            `json:"kind"`
	TenantID  uuid.UUID         `json:"tenant_id"`
	OrderID   uuid.UUID         `json:"order_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    enums.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Publisher fans order events out to the tenant channel.
type Publisher struct {
	client publisher
	now    func() time.Time
}

// NewPublisher wires a realtime publisher on the shared redis client.
func NewPublisher(client publisher) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Publisher{client: client, now: time.Now}, nil
}

// OrderCreated announces a freshly committed order.
func (p *Publisher) OrderCreated(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, EventOrderCreated, order)
}

// OrderStatusChanged announces a lifecycle transition.
func (p *Publisher) OrderStatusChanged(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, EventOrderStatusChanged, order)
}

func (p *Publisher) publish(ctx context.Context, kind string, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}
	payload, err := json.Marshal(Event{
		Kind:      kind,
		TenantID:  order.TenantID,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	return p.client.Publish(ctx, redis.EventChannel(order.TenantID.String()), payload)
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

const (
	// Orders the restaurant never confirmed are canceled after this long.
	defaultPendingTTL = 24 * time.Hour
	expiryBatchSize   = 200
)

type pendingOrderLister interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type orderCanceler interface {
	AdvanceStatus(ctx context.Context, tenantID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	Orders     pendingOrderLister
	Canceler   orderCanceler
	PendingTTL time.Duration
	Now        func() time.Time
}

// OrderExpiryJob cancels orders that sat in pending longer than the TTL.
// Cancelation goes through the order service so the status transition is
// validated and the realtime event fires.
type OrderExpiryJob struct {
	logg       *logger.Logger
	orders     pendingOrderLister
	canceler   orderCanceler
	pendingTTL time.Duration
	now        func() time.Time
}

// NewOrderExpiryJob builds the job.
func NewOrderExpiryJob(params OrderExpiryJobParams) (*OrderExpiryJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order lister required")
	}
	if params.Canceler == nil {
		return nil, fmt.Errorf("order canceler required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &OrderExpiryJob{
		logg:       params.Logger,
		orders:     params.Orders,
		canceler:   params.Canceler,
		pendingTTL: ttl,
		now:        now,
	}, nil
}

func (j *OrderExpiryJob) Name() string { return "order_expiry" }

// Run cancels one batch of stale pending orders. A failure on one order does
// not stop the rest; errors are aggregated.
func (j *OrderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.pendingTTL)
	stale, err := j.orders.ListPendingBefore(ctx, cutoff, expiryBatchSize)
	if err != nil {
		return fmt.Errorf("list stale pending orders: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	var errs error
	canceled := 0
	for _, order := range stale {
		if _, cancelErr := j.canceler.AdvanceStatus(ctx, order.TenantID, order.ID, enums.OrderStatusCanceled); cancelErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("cancel order %s: %w", order.ID, cancelErr))
			continue
		}
		canceled++
	}

	runCtx := j.logg.WithFields(ctx, map[string]any{
		"stale":    len(stale),
		"canceled": canceled,
	})
	j.logg.Info(runCtx, "expired stale pending orders")
	return errs
}

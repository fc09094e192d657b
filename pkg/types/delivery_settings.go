package types

import "github.com/saborlabs/cardapio-backend/pkg/money"

// DeliverySettings is the tenant-scoped fee configuration. Pickup always
// yields a zero fee regardless of these values.
type DeliverySettings struct {
	FlatFee            money.Cents `json:"flat_fee_cents"`
	FreeAboveThreshold money.Cents `json:"free_above_threshold_cents"`
}

package tenants

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
)

type stubRepo struct {
	Repository
	settings map[string]json.RawMessage
	upserts  map[string]json.RawMessage
}

func (s *stubRepo) GetSetting(ctx context.Context, tenantID uuid.UUID, key string) (*models.TenantSetting, error) {
	value, ok := s.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.TenantSetting{TenantID: tenantID, Key: key, Value: value}, nil
}

func (s *stubRepo) UpsertSetting(ctx context.Context, tenantID uuid.UUID, key string, value json.RawMessage) error {
	if s.upserts == nil {
		s.upserts = map[string]json.RawMessage{}
	}
	s.upserts[key] = value
	return nil
}

var testDelivery = config.DeliveryConfig{
	FallbackFlatFee:      "11.99",
	FallbackFreeAbove:    "150.00",
	FallbackStoreAddress: "Retirada no balcão",
}

var testLoyalty = config.LoyaltyConfig{PointValue: "0.10"}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testDelivery, testLoyalty)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestDeliverySettingsReadsStoredValue(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{settings: map[string]json.RawMessage{
		SettingDeliverySettings: json.RawMessage(`{"flat_fee":"7.50","free_above_threshold":"80.00"}`),
	}}
	svc := newTestService(t, repo)

	settings := svc.DeliverySettings(context.Background(), uuid.New())
	if settings.FlatFee != 750 || settings.FreeAboveThreshold != 8000 {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestDeliverySettingsFallsBackWhenMissing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})
	settings := svc.DeliverySettings(context.Background(), uuid.New())
	if settings.FlatFee != 1199 || settings.FreeAboveThreshold != 15000 {
		t.Fatalf("expected fallback settings, got %+v", settings)
	}
}

func TestDeliverySettingsFallsBackOnCorruptValue(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{settings: map[string]json.RawMessage{
		SettingDeliverySettings: json.RawMessage(`{"flat_fee":"not-a-number"}`),
	}}
	svc := newTestService(t, repo)

	settings := svc.DeliverySettings(context.Background(), uuid.New())
	if settings.FlatFee != 1199 {
		t.Fatalf("expected fallback on corrupt value, got %+v", settings)
	}
}

func TestStoreAddressFallback(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})
	if got := svc.StoreAddress(context.Background(), uuid.New()); got != "Retirada no balcão" {
		t.Fatalf("address = %q", got)
	}

	repo := &stubRepo{settings: map[string]json.RawMessage{
		SettingStoreAddress: json.RawMessage(`{"address":"Rua A, 10 - Centro"}`),
	}}
	svc = newTestService(t, repo)
	if got := svc.StoreAddress(context.Background(), uuid.New()); got != "Rua A, 10 - Centro" {
		t.Fatalf("address = %q", got)
	}
}

func TestPointValueFromConfig(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})
	if got := svc.PointValue(); got != 10 {
		t.Fatalf("point value = %d, want 10 centavos", got)
	}
}

func TestUpdateDeliverySettingsValidation(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := newTestService(t, repo)
	tenantID := uuid.New()

	err := svc.UpdateDeliverySettings(context.Background(), tenantID, DeliverySettingsInput{
		FlatFee:            "abc",
		FreeAboveThreshold: "xyz",
	})
	if err == nil {
		t.Fatal("unparseable amounts must be rejected")
	}

	err = svc.UpdateDeliverySettings(context.Background(), tenantID, DeliverySettingsInput{
		FlatFee:            "5.00",
		FreeAboveThreshold: "60.00",
	})
	if err != nil {
		t.Fatalf("UpdateDeliverySettings: %v", err)
	}
	if _, ok := repo.upserts[SettingDeliverySettings]; !ok {
		t.Fatal("expected an upserted setting")
	}
}

func TestNewServiceRejectsBadFallbacks(t *testing.T) {
	t.Parallel()

	bad := testDelivery
	bad.FallbackFlatFee = "not-money"
	if _, err := NewService(&stubRepo{}, bad, testLoyalty); err == nil {
		t.Fatal("invalid fallback config must fail construction")
	}
}

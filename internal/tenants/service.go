package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

// Service resolves storefronts and their tenant-scoped configuration.
// Settings reads fall back to the configured defaults when the row is
// missing or unreadable, so pricing never blocks on configuration.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	DeliverySettings(ctx context.Context, tenantID uuid.UUID) types.DeliverySettings
	StoreAddress(ctx context.Context, tenantID uuid.UUID) string
	PointValue() money.Cents
	UpdateDeliverySettings(ctx context.Context, tenantID uuid.UUID, input DeliverySettingsInput) error
	UpdateStoreAddress(ctx context.Context, tenantID uuid.UUID, address string) error
}

// DeliverySettingsInput is the admin payload, amounts as decimal strings.
type DeliverySettingsInput struct {
	FlatFee            string `json:"flat_fee" validate:"required"`
	FreeAboveThreshold string `json:"free_above_threshold" validate:"required"`
}

type deliverySettingsJSON struct {
	FlatFee            string `json:"flat_fee"`
	FreeAboveThreshold string `json:"free_above_threshold"`
}

type storeAddressJSON struct {
	Address string `json:"address"`
}

type service struct {
	repo     Repository
	fallback types.DeliverySettings
	address  string
	point    money.Cents
}

// NewService wires a tenant service. The delivery and loyalty config carry
// the hardcoded fallbacks.
func NewService(repo Repository, delivery config.DeliveryConfig, loyalty config.LoyaltyConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}

	var err error
	flatFee, feeErr := money.Parse(delivery.FallbackFlatFee)
	err = multierr.Append(err, feeErr)
	freeAbove, aboveErr := money.Parse(delivery.FallbackFreeAbove)
	err = multierr.Append(err, aboveErr)
	point, pointErr := money.Parse(loyalty.PointValue)
	err = multierr.Append(err, pointErr)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback config: %w", err)
	}

	return &service{
		repo:     repo,
		fallback: types.DeliverySettings{FlatFee: flatFee, FreeAboveThreshold: freeAbove},
		address:  delivery.FallbackStoreAddress,
		point:    point,
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	tenant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loja não encontrada")
		}
		return nil, err
	}
	return tenant, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loja não encontrada")
		}
		return nil, err
	}
	return tenant, nil
}

func (s *service) DeliverySettings(ctx context.Context, tenantID uuid.UUID) types.DeliverySettings {
	setting, err := s.repo.GetSetting(ctx, tenantID, SettingDeliverySettings)
	if err != nil {
		return s.fallback
	}
	var raw deliverySettingsJSON
	if err := json.Unmarshal(setting.Value, &raw); err != nil {
		return s.fallback
	}
	flatFee, feeErr := money.Parse(raw.FlatFee)
	freeAbove, aboveErr := money.Parse(raw.FreeAboveThreshold)
	if multierr.Combine(feeErr, aboveErr) != nil {
		return s.fallback
	}
	return types.DeliverySettings{FlatFee: flatFee, FreeAboveThreshold: freeAbove}
}

func (s *service) StoreAddress(ctx context.Context, tenantID uuid.UUID) string {
	setting, err := s.repo.GetSetting(ctx, tenantID, SettingStoreAddress)
	if err != nil {
		return s.address
	}
	var raw storeAddressJSON
	if err := json.Unmarshal(setting.Value, &raw); err != nil || raw.Address == "" {
		return s.address
	}
	return raw.Address
}

func (s *service) PointValue() money.Cents {
	return s.point
}

func (s *service) UpdateDeliverySettings(ctx context.Context, tenantID uuid.UUID, input DeliverySettingsInput) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	flatFee, feeErr := money.Parse(input.FlatFee)
	freeAbove, aboveErr := money.Parse(input.FreeAboveThreshold)
	if err := multierr.Combine(feeErr, aboveErr); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "valores de entrega inválidos")
	}
	if flatFee < 0 || freeAbove < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "valores de entrega não podem ser negativos")
	}

	value, err := json.Marshal(deliverySettingsJSON{
		FlatFee:            flatFee.Decimal().StringFixed(2),
		FreeAboveThreshold: freeAbove.Decimal().StringFixed(2),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal delivery settings")
	}
	return s.repo.UpsertSetting(ctx, tenantID, SettingDeliverySettings, value)
}

func (s *service) UpdateStoreAddress(ctx context.Context, tenantID uuid.UUID, address string) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if address == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "endereço da loja é obrigatório")
	}
	value, err := json.Marshal(storeAddressJSON{Address: address})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal store address")
	}
	return s.repo.UpsertSetting(ctx, tenantID, SettingStoreAddress, value)
}

package addresses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the address book consumed by the checkout address step.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

// Input is the create/update payload.
type Input struct {
	Label        string  `json:"label" validate:"required,max=60"`
	Street       string  `json:"street" validate:"required,max=160"`
	Number       string  `json:"number" validate:"required,max=20"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood" validate:"required,max=120"`
	City         string  `json:"city" validate:"required,max=120"`
	State        string  `json:"state" validate:"required,len=2"`
	PostalCode   string  `json:"postal_code" validate:"required,max=9"`
	IsDefault    bool    `json:"is_default"`
}

type service struct {
	client txRunner
	repo   Repository
}

// NewService wires the address service. The tx runner carries the two-write
// default switch in one transaction.
func NewService(client txRunner, repo Repository) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{client: client, repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and address ids are required")
	}
	address, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "endereço não encontrado")
		}
		return nil, err
	}
	return address, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The first address becomes the default automatically.
	makeDefault := input.IsDefault || len(existing) == 0

	address := &models.Address{
		UserID:       userID,
		Label:        input.Label,
		Street:       input.Street,
		Number:       input.Number,
		Complement:   input.Complement,
		Neighborhood: input.Neighborhood,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		IsDefault:    makeDefault,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if makeDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		_, err := repo.Create(ctx, address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input Input) (*models.Address, error) {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	address.Label = input.Label
	address.Street = input.Street
	address.Number = input.Number
	address.Complement = input.Complement
	address.Neighborhood = input.Neighborhood
	address.City = input.City
	address.State = input.State
	address.PostalCode = input.PostalCode

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		_, err := repo.Update(ctx, address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and address ids are required")
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *service) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		address.IsDefault = true
		_, err := repo.Update(ctx, address)
		return err
	})
}

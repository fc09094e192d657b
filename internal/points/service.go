package points

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

// Service exposes the loyalty balance and ledger operations.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsLedgerEntry, error)
	// RecordOrderMovements writes the used and earned ledger entries for a
	// committed order and moves the mirrored balance by earned-used. Runs on
	// the caller's transaction so the order commit stays atomic.
	RecordOrderMovements(ctx context.Context, tx *gorm.DB, input OrderMovementsInput) error
}

// OrderMovementsInput describes the loyalty side of an order commit.
type OrderMovementsInput struct {
	UserID  uuid.UUID
	OrderID uuid.UUID
	Used    int
	Earned  int
}

type service struct {
	repo Repository
}

// NewService wires a points service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.GetBalance(ctx, userID)
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsLedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *service) RecordOrderMovements(ctx context.Context, tx *gorm.DB, input OrderMovementsInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Used < 0 || input.Earned < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "point movements cannot be negative")
	}
	repo := s.repo.WithTx(tx)

	if input.Used > 0 {
		ok, err := repo.AdjustBalance(ctx, input.UserID, -input.Used)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "saldo de pontos insuficiente")
		}
		entry := &models.PointsLedgerEntry{
			UserID:      input.UserID,
			OrderID:     &input.OrderID,
			Type:        enums.PointsEntryTypeUsed,
			Amount:      -input.Used,
			Description: fmt.Sprintf("Resgate no pedido %s", shortOrderRef(input.OrderID)),
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return err
		}
	}

	if input.Earned > 0 {
		if _, err := repo.AdjustBalance(ctx, input.UserID, input.Earned); err != nil {
			return err
		}
		entry := &models.PointsLedgerEntry{
			UserID:      input.UserID,
			OrderID:     &input.OrderID,
			Type:        enums.PointsEntryTypeEarned,
			Amount:      input.Earned,
			Description: fmt.Sprintf("Pontos do pedido %s", shortOrderRef(input.OrderID)),
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// shortOrderRef is the first UUID block, enough for a human-readable
// ledger description.
func shortOrderRef(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

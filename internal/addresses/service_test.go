package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubRepo struct {
	Repository
	addresses []models.Address
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	for i := range s.addresses {
		if s.addresses[i].UserID == userID && s.addresses[i].ID == id {
			return &s.addresses[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	address.ID = uuid.New()
	s.addresses = append(s.addresses, *address)
	return address, nil
}

func (s *stubRepo) Update(ctx context.Context, address *models.Address) (*models.Address, error) {
	for i := range s.addresses {
		if s.addresses[i].ID == address.ID {
			s.addresses[i] = *address
		}
	}
	return address, nil
}

func (s *stubRepo) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	for i := range s.addresses {
		if s.addresses[i].UserID == userID {
			s.addresses[i].IsDefault = false
		}
	}
	return nil
}

func sampleInput() Input {
	return Input{
		Label:        "Casa",
		Street:       "Rua das Flores",
		Number:       "123",
		Neighborhood: "Centro",
		City:         "São Paulo",
		State:        "SP",
		PostalCode:   "01001-000",
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(stubTx{}, repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("first address must become the default")
	}

	second, err := svc.Create(context.Background(), userID, sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.IsDefault {
		t.Fatal("later addresses are not default unless requested")
	}
}

func TestSetDefaultSwitchesSingleDefault(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, _ := NewService(stubTx{}, repo)
	userID := uuid.New()

	first, _ := svc.Create(context.Background(), userID, sampleInput())
	second, _ := svc.Create(context.Background(), userID, sampleInput())

	if err := svc.SetDefault(context.Background(), userID, second.ID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	defaults := 0
	for _, a := range repo.addresses {
		if a.IsDefault {
			defaults++
			if a.ID != second.ID {
				t.Fatalf("wrong default: %s, want %s", a.ID, second.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("defaults = %d, want exactly one", defaults)
	}
	_ = first
}

func TestGetHidesForeignAddresses(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, _ := NewService(stubTx{}, repo)
	owner := uuid.New()
	created, _ := svc.Create(context.Background(), owner, sampleInput())

	if _, err := svc.Get(context.Background(), uuid.New(), created.ID); err == nil {
		t.Fatal("another user's address must be invisible")
	}
}

func TestDisplayTextFormat(t *testing.T) {
	t.Parallel()

	complement := "Apto 42"
	address := models.Address{
		Street:       "Rua das Flores",
		Number:       "123",
		Complement:   &complement,
		Neighborhood: "Centro",
		City:         "São Paulo",
		State:        "SP",
		PostalCode:   "01001-000",
	}
	got := address.DisplayText()
	want := "Rua das Flores, 123 - Apto 42 - Centro - São Paulo/SP - 01001-000"
	if got != want {
		t.Fatalf("DisplayText() = %q, want %q", got, want)
	}
}

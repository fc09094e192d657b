package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Service exposes the menu to the storefront and the admin CRUD behind it.
type Service interface {
	Menu(ctx context.Context, tenantID uuid.UUID) (*MenuDTO, error)
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	SearchProducts(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]models.Product, error)

	CreateCategory(ctx context.Context, tenantID uuid.UUID, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, tenantID, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error

	CreateProduct(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, tenantID, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error
}

// MenuDTO is the storefront menu: active categories with their active
// products, add-on tree included.
type MenuDTO struct {
	Categories []MenuCategoryDTO `json:"categories"`
}

// MenuCategoryDTO is one rendered menu section.
type MenuCategoryDTO struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

// CategoryInput is the admin payload for category writes.
type CategoryInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// ProductInput is the admin payload for product writes. AddonGroups
// replaces the stored tree wholesale.
type ProductInput struct {
	CategoryID  *uuid.UUID          `json:"category_id"`
	Name        string              `json:"name" validate:"required,max=160"`
	Description *string             `json:"description"`
	PriceCents  money.Cents         `json:"price_cents" validate:"gte=0"`
	ImageURL    *string             `json:"image_url"`
	IsActive    *bool               `json:"is_active"`
	AddonGroups []models.AddonGroup `json:"addon_groups"`
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Menu(ctx context.Context, tenantID uuid.UUID) (*MenuDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	categories, err := s.repo.ListCategories(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, tenantID, ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	byCategory := map[uuid.UUID][]models.Product{}
	var uncategorized []models.Product
	for _, product := range products {
		if product.CategoryID == nil {
			uncategorized = append(uncategorized, product)
			continue
		}
		byCategory[*product.CategoryID] = append(byCategory[*product.CategoryID], product)
	}

	menu := &MenuDTO{}
	for _, category := range categories {
		menu.Categories = append(menu.Categories, MenuCategoryDTO{
			Category: category,
			Products: byCategory[category.ID],
		})
	}
	if len(uncategorized) > 0 {
		menu.Categories = append(menu.Categories, MenuCategoryDTO{
			Category: models.Category{TenantID: tenantID, Name: "Outros"},
			Products: uncategorized,
		})
	}
	return menu, nil
}

func (s *service) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	if tenantID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and product ids are required")
	}
	product, err := s.repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "produto não encontrado")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) SearchProducts(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	return s.repo.ListProducts(ctx, tenantID, filter)
}

func (s *service) CreateCategory(ctx context.Context, tenantID uuid.UUID, input CategoryInput) (*models.Category, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	category := &models.Category{
		TenantID:  tenantID,
		Name:      input.Name,
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *service) UpdateCategory(ctx context.Context, tenantID, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	var category *models.Category
	for i := range categories {
		if categories[i].ID == id {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "categoria não encontrada")
	}
	category.Name = input.Name
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	return s.repo.UpdateCategory(ctx, category)
}

func (s *service) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant and category ids are required")
	}
	return s.repo.DeleteCategory(ctx, tenantID, id)
}

func (s *service) CreateProduct(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if err := validateAddonGroups(input.AddonGroups); err != nil {
		return nil, err
	}
	product := &models.Product{
		TenantID:    tenantID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		ImageURL:    input.ImageURL,
		IsActive:    true,
		AddonGroups: input.AddonGroups,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *service) UpdateProduct(ctx context.Context, tenantID, id uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := validateAddonGroups(input.AddonGroups); err != nil {
		return nil, err
	}
	product.CategoryID = input.CategoryID
	product.Name = input.Name
	product.Description = input.Description
	product.PriceCents = input.PriceCents
	product.ImageURL = input.ImageURL
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.AddonGroups != nil {
		product.AddonGroups = input.AddonGroups
	}
	return s.repo.UpdateProduct(ctx, product)
}

func (s *service) DeleteProduct(ctx context.Context, tenantID, id uuid.UUID) error {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant and product ids are required")
	}
	return s.repo.DeleteProduct(ctx, tenantID, id)
}

func validateAddonGroups(groups []models.AddonGroup) error {
	for _, group := range groups {
		if group.MaxSelections < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("grupo %q precisa de max_selections >= 1", group.Name))
		}
		minRequired := group.MinSelections
		if group.IsRequired && minRequired < 1 {
			minRequired = 1
		}
		if minRequired > group.MaxSelections {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("grupo %q tem mínimo maior que o máximo", group.Name))
		}
	}
	return nil
}

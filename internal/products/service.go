package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/pagination"
)

// Service exposes catalog browsing and staff catalog management.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID, slug string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Slug           string
	Manufacturer   string
	Price          decimal.Decimal
	Stock          int
	Available      bool
	Description    string
	Specifications string
	ImageURL       *string
}

// UpdateProductInput holds optional mutation values for a product. Setting
// Available to false is how staff remove a product from sale.
type UpdateProductInput struct {
	Name           *string
	Slug           *string
	Manufacturer   *string
	Price          *decimal.Decimal
	Stock          *int
	Available      *bool
	Description    *string
	Specifications *string
	ImageURL       *string
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAvailable(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Products = append(result.Products, NewProductDTO(row))
	}
	return result, nil
}

// GetProduct returns an available product whose slug matches.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if !product.Available || (slug != "" && product.Slug != slug) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := NewProductDTO(*product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	price, err := normalizePrice(input.Price)
	if err != nil {
		return nil, err
	}
	if err := validateStock(input.Stock); err != nil {
		return nil, err
	}

	slug, err := s.resolveSlug(ctx, input.Slug, name, nil)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:           name,
		Slug:           slug,
		Manufacturer:   strings.TrimSpace(input.Manufacturer),
		Price:          price,
		Stock:          input.Stock,
		Available:      input.Available,
		Description:    input.Description,
		Specifications: input.Specifications,
		ImageURL:       input.ImageURL,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	dto := NewProductDTO(*created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Slug != nil {
		slug, err := s.resolveSlug(ctx, *input.Slug, product.Name, &product.ID)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}
	if input.Manufacturer != nil {
		product.Manufacturer = strings.TrimSpace(*input.Manufacturer)
	}
	if input.Price != nil {
		price, err := normalizePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if input.Stock != nil {
		if err := validateStock(*input.Stock); err != nil {
			return nil, err
		}
		product.Stock = *input.Stock
	}
	if input.Available != nil {
		product.Available = *input.Available
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Specifications != nil {
		product.Specifications = *input.Specifications
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	dto := NewProductDTO(*saved)
	return &dto, nil
}

// resolveSlug derives the slug from the requested value or the name and
// appends a numeric suffix until it is unique.
func (s *service) resolveSlug(ctx context.Context, requested, name string, exclude *uuid.UUID) (string, error) {
	base := Slugify(requested)
	if base == "" {
		base = Slugify(name)
	}
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be derived from name")
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// normalizePrice rounds to cents and then checks the stored value is positive.
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	rounded := price.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be at least 0.01").
			WithDetails(map[string]any{"field": "price"})
	}
	return rounded, nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative").
			WithDetails(map[string]any{"field": "stock"})
	}
	return nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
}

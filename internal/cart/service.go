package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
)

// Service mutates and reads the session cart.
type Service interface {
	Load(ctx context.Context, state *visitor.State) (*Cart, error)
	Add(ctx context.Context, state *visitor.State, productID uuid.UUID, quantity int, override bool) (*AddResult, error)
	Remove(ctx context.Context, state *visitor.State, productID uuid.UUID) error
	Clear(ctx context.Context, state *visitor.State) error
}

// AddResult describes what Add stored.
type AddResult struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	// Clamped is set when the requested quantity exceeded stock and the
	// stored quantity was reduced to what is available.
	Clamped   bool `json:"clamped"`
	Available int  `json:"available"`
}

// Notice renders the user-facing message for the add outcome.
func (r *AddResult) Notice() string {
	if r.Clamped {
		return fmt.Sprintf("Only %d units of %s are available; your cart now holds %d.", r.Available, r.ProductName, r.Quantity)
	}
	return fmt.Sprintf("%s was added to your cart.", r.ProductName)
}

type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type service struct {
	catalog catalog
	store   visitor.Store
}

// NewService constructs a cart service instance.
func NewService(catalog catalog, store visitor.Store) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if store == nil {
		return nil, fmt.Errorf("visitor store required")
	}
	return &service{catalog: catalog, store: store}, nil
}

func (s *service) Load(ctx context.Context, state *visitor.State) (*Cart, error) {
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	products, err := s.catalog.FindByIDs(ctx, state.ProductIDs())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	return newCart(state.Cart, products), nil
}

func (s *service) Add(ctx context.Context, state *visitor.State, productID uuid.UUID, quantity int, override bool) (*AddResult, error) {
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.Available {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if product.Stock <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("%s is out of stock.", product.Name)).
			WithDetails(map[string]any{"product_id": product.ID, "available": 0})
	}

	desired := quantity
	if !override {
		desired += state.Quantity(productID)
	}
	result := &AddResult{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.Stock,
	}
	if desired > product.Stock {
		desired = product.Stock
		result.Clamped = true
	}
	result.Quantity = desired

	if err := s.mutate(ctx, state, func() { state.SetQuantity(productID, desired) }); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Remove(ctx context.Context, state *visitor.State, productID uuid.UUID) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	return s.mutate(ctx, state, func() { state.RemoveEntry(productID) })
}

func (s *service) Clear(ctx context.Context, state *visitor.State) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	return s.mutate(ctx, state, state.ClearCart)
}

// mutate applies change and saves. The cart is restored when the save fails,
// so a later save of the same state cannot persist the rejected change.
func (s *service) mutate(ctx context.Context, state *visitor.State, change func()) error {
	before := state.SnapshotCart()
	change()
	if err := s.store.Save(ctx, state); err != nil {
		state.RestoreCart(before)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

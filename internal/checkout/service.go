// Package checkout turns a session cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/orders"
	product "github.com/angelmondragon/phoneshop-backend/internal/products"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
	"github.com/angelmondragon/phoneshop-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartService interface {
	Load(ctx context.Context, state *visitor.State) (*cart.Cart, error)
	Clear(ctx context.Context, state *visitor.State) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, kind enums.NotificationKind, order *models.Order)
}

// Service executes checkout orchestration.
type Service interface {
	PlaceOrder(ctx context.Context, state *visitor.State, userID *uuid.UUID, input ShippingInput) (*models.Order, error)
}

type service struct {
	tx          txRunner
	cart        cartService
	productRepo *product.Repository
	ordersRepo  orders.Repository
	notifier    dispatcher
	metrics     *metrics.CheckoutMetrics
	logg        *logger.Logger
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Tx          txRunner
	Cart        cartService
	ProductRepo *product.Repository
	OrdersRepo  orders.Repository
	Notifier    dispatcher
	Metrics     *metrics.CheckoutMetrics
	Logger      *logger.Logger
}

// NewService wires the checkout service. Metrics are optional.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if deps.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          deps.Tx,
		cart:        deps.Cart,
		productRepo: deps.ProductRepo,
		ordersRepo:  deps.OrdersRepo,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
	}, nil
}

type orderLine struct {
	productID uuid.UUID
	name      string
	quantity  int
}

func (s *service) PlaceOrder(ctx context.Context, state *visitor.State, userID *uuid.UUID, input ShippingInput) (*models.Order, error) {
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	input = input.normalized()
	if err := input.validate(); err != nil {
		return nil, err
	}

	current, err := s.cart.Load(ctx, state)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		s.metrics.IncOutcome(metrics.OutcomeEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}
	if issues := checkStock(current); len(issues) > 0 {
		s.metrics.IncOutcome(metrics.OutcomeInsufficientStock)
		return nil, insufficientStock(issues)
	}

	lines := make([]orderLine, 0, len(state.Cart))
	for line := range current.Items() {
		lines = append(lines, orderLine{productID: line.Product.ID, name: line.Product.Name, quantity: line.Quantity})
	}

	order := &models.Order{
		UserID:     userID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		City:       input.City,
		PostalCode: input.PostalCode,
		Status:     enums.OrderStatusPlaced,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		items := make([]models.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			ok, err := productRepo.DecrementStock(ctx, line.productID, line.quantity)
			if err != nil {
				return err
			}
			if !ok {
				available := 0
				if p, ferr := productRepo.FindByID(ctx, line.productID); ferr == nil && p.Available {
					available = p.Stock
				}
				return insufficientStock([]StockIssue{newStockIssue(line.productID, line.name, line.quantity, available)})
			}

			// price is read inside the transaction and frozen on the item
			p, err := productRepo.FindByID(ctx, line.productID)
			if err != nil {
				return err
			}
			item := models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.quantity,
				UnitPrice:   p.Price,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order.Total = total
		if _, err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := ordersRepo.CreateItems(ctx, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncOutcome(metrics.OutcomeInsufficientStock)
			return nil, typed
		}
		s.metrics.IncOutcome(metrics.OutcomePersistenceError)
		s.logg.Error(ctx, "order placement failed", err)
		return nil, persistenceError(err)
	}
	s.metrics.IncOutcome(metrics.OutcomePlaced)

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order placed")

	if err := s.cart.Clear(ctx, state); err != nil {
		s.logg.Error(ctx, "clear cart after order", err)
	}
	s.notifier.Dispatch(ctx, enums.NotificationKindOrderPlaced, order)
	return order, nil
}

func persistenceError(err error) *pkgerrors.Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "order placement interrupted")
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "could not save your order, please try again")
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, kind enums.NotificationKind, order *models.Order)
}

// Service exposes order history to customers and fulfilment updates to staff.
type Service interface {
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	UpdateOrder(ctx context.Context, input UpdateOrderInput) (*OrderDTO, error)
}

// UpdateOrderInput carries a staff edit. Nil fields are left untouched and an
// empty tracking number clears it.
type UpdateOrderInput struct {
	OrderID        uuid.UUID
	Status         *enums.OrderStatus
	Paid           *bool
	TrackingNumber *string
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier dispatcher
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier dispatcher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	return &service{repo: repo, tx: tx, notifier: notifier}, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Orders = append(result.Orders, newOrderSummary(row))
	}
	return result, nil
}

// GetOrder returns the order only when it belongs to userID. Other users'
// orders are reported as missing.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) UpdateOrder(ctx context.Context, input UpdateOrderInput) (*OrderDTO, error) {
	if input.Status == nil && input.Paid == nil && input.TrackingNumber == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no changes requested")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"field": "status"})
	}

	var shipped bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Status != nil && *input.Status != order.Status {
			if !CanTransition(order.Status, *input.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, *input.Status))
			}
			updates["status"] = *input.Status
			shipped = *input.Status == enums.OrderStatusShipped
		}
		if input.Paid != nil {
			updates["paid"] = *input.Paid
		}
		if input.TrackingNumber != nil {
			if tracking := strings.TrimSpace(*input.TrackingNumber); tracking != "" {
				updates["tracking_number"] = tracking
			} else {
				updates["tracking_number"] = nil
			}
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.load(ctx, s.repo, input.OrderID)
	if err != nil {
		return nil, err
	}
	if shipped {
		s.notifier.Dispatch(ctx, enums.NotificationKindOrderShipped, order)
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

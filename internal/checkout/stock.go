package checkout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
)

// StockIssue describes one cart line the catalog can no longer fill.
type StockIssue struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
	Message     string    `json:"message"`
}

func newStockIssue(productID uuid.UUID, name string, requested, available int) StockIssue {
	issue := StockIssue{
		ProductID:   productID,
		ProductName: name,
		Requested:   requested,
		Available:   available,
	}
	if available <= 0 {
		issue.Message = fmt.Sprintf("%s is out of stock.", name)
	} else {
		issue.Message = fmt.Sprintf("Only %d units of %s are available (you requested %d).", available, name, requested)
	}
	return issue
}

// checkStock compares every line with the live catalog row loaded with the cart.
func checkStock(c *cart.Cart) []StockIssue {
	var issues []StockIssue
	for line := range c.Items() {
		available := line.Product.Stock
		if !line.Product.Available {
			available = 0
		}
		if line.Quantity > available {
			issues = append(issues, newStockIssue(line.Product.ID, line.Product.Name, line.Quantity, available))
		}
	}
	return issues
}

func insufficientStock(issues []StockIssue) *pkgerrors.Error {
	message := "Some items in your cart are no longer available."
	if len(issues) == 1 {
		message = issues[0].Message
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, message).
		WithDetails(map[string]any{"items": issues})
}

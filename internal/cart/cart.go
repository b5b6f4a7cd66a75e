package cart

import (
	"iter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
)

// Line is one priced cart row.
type Line struct {
	Product  models.Product
	Quantity int
	Subtotal decimal.Decimal
}

// Cart is a read view of the session cart joined with live catalog rows.
type Cart struct {
	entries  []visitor.CartEntry
	products map[uuid.UUID]models.Product
}

func newCart(entries []visitor.CartEntry, products []models.Product) *Cart {
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	snapshot := make([]visitor.CartEntry, len(entries))
	copy(snapshot, entries)
	return &Cart{entries: snapshot, products: byID}
}

// Items yields the cart lines in insertion order. Entries whose product no
// longer exists are skipped. The sequence can be ranged over repeatedly.
func (c *Cart) Items() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for _, entry := range c.entries {
			product, ok := c.products[entry.ProductID]
			if !ok {
				continue
			}
			line := Line{
				Product:  product,
				Quantity: entry.Quantity,
				Subtotal: product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))),
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Total sums quantity times the current catalog price.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for line := range c.Items() {
		total = total.Add(line.Subtotal)
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	count := 0
	for line := range c.Items() {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether no line resolves to a product.
func (c *Cart) IsEmpty() bool {
	for range c.Items() {
		return false
	}
	return true
}

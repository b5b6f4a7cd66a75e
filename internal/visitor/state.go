// Package visitor holds the per-session state that carries a shopper's cart,
// a parked add-to-cart intent and one-shot flash notices between requests.
package visitor

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
)

// FlashLevel classifies a flash notice.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashError   FlashLevel = "error"
)

// CartEntry is one product line in the session cart.
type CartEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// PendingIntent is an add-to-cart request parked until the visitor logs in.
type PendingIntent struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Override  bool      `json:"override"`
}

// Flash is a notice shown once and then discarded.
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// State is the explicit session state passed to every cart operation.
type State struct {
	ID           string                   `json:"-"`
	UserID       *uuid.UUID               `json:"user_id,omitempty"`
	Cart         []CartEntry              `json:"cart"`
	Pending      *PendingIntent           `json:"pending,omitempty"`
	PendingState enums.PendingIntentState `json:"pending_state"`
	Flashes      []Flash                  `json:"flashes,omitempty"`
}

// NewState returns an empty state for the session id.
func NewState(id string) *State {
	return &State{
		ID:           id,
		Cart:         []CartEntry{},
		PendingState: enums.PendingIntentStateIdle,
	}
}

// Quantity returns the stored quantity for productID, or zero.
func (s *State) Quantity(productID uuid.UUID) int {
	for _, entry := range s.Cart {
		if entry.ProductID == productID {
			return entry.Quantity
		}
	}
	return 0
}

// SetQuantity stores quantity for productID, keeping the entry's original
// position. Non-positive quantities remove the entry.
func (s *State) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		s.RemoveEntry(productID)
		return
	}
	for i := range s.Cart {
		if s.Cart[i].ProductID == productID {
			s.Cart[i].Quantity = quantity
			return
		}
	}
	s.Cart = append(s.Cart, CartEntry{ProductID: productID, Quantity: quantity})
}

// RemoveEntry drops productID from the cart. It reports whether it was present.
func (s *State) RemoveEntry(productID uuid.UUID) bool {
	for i, entry := range s.Cart {
		if entry.ProductID == productID {
			s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
			return true
		}
	}
	return false
}

// SnapshotCart copies the cart entries so a failed save can be rolled back
// with RestoreCart.
func (s *State) SnapshotCart() []CartEntry {
	return append([]CartEntry(nil), s.Cart...)
}

func (s *State) RestoreCart(entries []CartEntry) {
	if entries == nil {
		entries = []CartEntry{}
	}
	s.Cart = entries
}

func (s *State) ClearCart() {
	s.Cart = []CartEntry{}
}

// ProductIDs lists cart products in insertion order.
func (s *State) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Cart))
	for _, entry := range s.Cart {
		ids = append(ids, entry.ProductID)
	}
	return ids
}

func (s *State) PushFlash(level FlashLevel, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// DrainFlashes returns pending notices and clears them.
func (s *State) DrainFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	if flashes == nil {
		return []Flash{}
	}
	return flashes
}

// BoundToOther reports whether the session already belongs to a user other
// than userID.
func (s *State) BoundToOther(userID uuid.UUID) bool {
	return s.UserID != nil && *s.UserID != userID
}

// Reset drops everything the session carries while keeping its id.
func (s *State) Reset() {
	s.UserID = nil
	s.Cart = []CartEntry{}
	s.Pending = nil
	s.PendingState = enums.PendingIntentStateIdle
	s.Flashes = nil
}

// BindUser records the authenticated user owning this session.
func (s *State) BindUser(userID uuid.UUID) {
	id := userID
	s.UserID = &id
}

package cart

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/example/sugrae-storefront/internal/watch"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct   = errors.New("product id is required")
	ErrItemNotFound     = errors.New("item not in cart")
	ErrInvalidAttribute = errors.New("unknown packaging attribute")
)

// Attribute is the packaging colour of a line item
type Attribute string

const (
	AttributeNone     Attribute = ""
	AttributeGold     Attribute = "gold"
	AttributeRoseGold Attribute = "rose-gold"
	AttributeSilver   Attribute = "silver"
)

// ParseAttribute accepts the empty string and the known packaging colours
func ParseAttribute(s string) (Attribute, error) {
	switch a := Attribute(s); a {
	case AttributeNone, AttributeGold, AttributeRoseGold, AttributeSilver:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAttribute, s)
}

// LineItem is one product in the cart. There is at most one line per product
// id; the attribute is a property of the line, not part of its key.
type LineItem struct {
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	Attribute Attribute       `json:"attribute,omitempty"`
}

// Snapshot is a consistent view of the cart and its panels
type Snapshot struct {
	Items        []LineItem `json:"items"`
	ItemCount    int        `json:"item_count"`
	IsOpen       bool       `json:"is_open"`
	CheckoutOpen bool       `json:"checkout_open"`
	Change       Change     `json:"change"`
}

// Store holds the visitor's cart. It is in memory only and starts empty.
type Store struct {
	mu           sync.RWMutex
	items        []LineItem
	isOpen       bool
	checkoutOpen bool

	hub watch.Hub[Snapshot]
}

// NewStore returns an empty cart
func NewStore() *Store {
	return &Store{}
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// mutate runs fn under the write lock and publishes the result
func (s *Store) mutate(change Change, fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snapshotLocked(change)
	s.mu.Unlock()

	s.hub.Publish(snap)
	return nil
}

// AddItem adds one unit of p, merging into an existing line for the same id.
// The line keeps the latest product data.
func (s *Store) AddItem(p product.Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	return s.mutate(Change{Kind: ChangeItemAdded, ProductID: p.ID}, func() error {
		if i := s.indexOf(p.ID); i >= 0 {
			s.items[i].Quantity++
			s.items[i].Product = p.Clone()
			return nil
		}
		s.items = append(s.items, LineItem{Product: p.Clone(), Quantity: 1})
		return nil
	})
}

// RemoveItem deletes the line for productID. Removing an absent item is a no-op.
func (s *Store) RemoveItem(productID string) {
	_ = s.mutate(Change{Kind: ChangeItemRemoved, ProductID: productID}, func() error {
		if i := s.indexOf(productID); i >= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return nil
	})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return nil
	}
	return s.mutate(Change{Kind: ChangeQuantityUpdated, ProductID: productID}, func() error {
		i := s.indexOf(productID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, productID)
		}
		s.items[i].Quantity = quantity
		return nil
	})
}

// UpdateAttribute sets the packaging colour of a line
func (s *Store) UpdateAttribute(productID, value string) error {
	attr, err := ParseAttribute(value)
	if err != nil {
		return err
	}
	return s.mutate(Change{Kind: ChangeAttributeUpdated, ProductID: productID}, func() error {
		i := s.indexOf(productID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, productID)
		}
		s.items[i].Attribute = attr
		return nil
	})
}

// Clear empties the cart
func (s *Store) Clear() {
	_ = s.mutate(Change{Kind: ChangeCleared}, func() error {
		if len(s.items) > 0 {
			log.Printf("[Cart] Cleared %d line items", len(s.items))
		}
		s.items = nil
		return nil
	})
}

func (s *Store) setPanels(fn func()) {
	_ = s.mutate(Change{Kind: ChangePanel}, func() error {
		fn()
		return nil
	})
}

// OpenCart shows the cart panel
func (s *Store) OpenCart() { s.setPanels(func() { s.isOpen = true }) }

// CloseCart hides the cart panel
func (s *Store) CloseCart() { s.setPanels(func() { s.isOpen = false }) }

// ToggleCart flips the cart panel
func (s *Store) ToggleCart() { s.setPanels(func() { s.isOpen = !s.isOpen }) }

// OpenCheckout shows the checkout panel and hides the cart panel
func (s *Store) OpenCheckout() {
	s.setPanels(func() {
		s.checkoutOpen = true
		s.isOpen = false
	})
}

// CloseCheckout hides the checkout panel
func (s *Store) CloseCheckout() { s.setPanels(func() { s.checkoutOpen = false }) }

// Items returns a copy of the line items
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItemsLocked()
}

// Total sums quantity times the resolved price of every line for r
func (s *Store) Total(r region.Region) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalOf(s.items, r)
}

// ItemCount sums the quantities of every line
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countOf(s.items)
}

// IsOpen reports whether the cart panel is shown
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOpen
}

// CheckoutOpen reports whether the checkout panel is shown
func (s *Store) CheckoutOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkoutOpen
}

// Snapshot returns the items and panel flags together
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(Change{})
}

// Subscribe registers fn for every cart change
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.hub.Subscribe(fn)
}

func (s *Store) snapshotLocked(change Change) Snapshot {
	return Snapshot{
		Items:        s.copyItemsLocked(),
		ItemCount:    countOf(s.items),
		IsOpen:       s.isOpen,
		CheckoutOpen: s.checkoutOpen,
		Change:       change,
	}
}

func (s *Store) copyItemsLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	for i, item := range s.items {
		item.Product = item.Product.Clone()
		out[i] = item
	}
	return out
}

// TotalOf sums quantity times the resolved price of items for r
func TotalOf(items []LineItem, r region.Region) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		price := pricing.ResolvePrice(item.Product, r)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func countOf(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

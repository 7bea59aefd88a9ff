package checkout

import (
	"time"

	"github.com/example/sugrae-storefront/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// EventOrderPlaced is published once per completed guest checkout
const EventOrderPlaced = "OrderPlaced"

// OrderLine is one purchased product priced for the order's region
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	VariantID string          `json:"variant_id,omitempty"`
	Attribute string          `json:"attribute,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPlaced is the payload of EventOrderPlaced
type OrderPlaced struct {
	OrderID  string          `json:"order_id"`
	Customer customer.Info   `json:"customer"`
	Items    []OrderLine     `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
	Region   string          `json:"region"`
	PlacedAt time.Time       `json:"placed_at"`
}

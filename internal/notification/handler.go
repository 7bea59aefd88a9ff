package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/sugrae-storefront/internal/checkout"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/email"
	"github.com/example/sugrae-storefront/internal/events"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Mailer sends order confirmations
type Mailer interface {
	SendOrderConfirmation(c email.Confirmation) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, env events.Envelope) error {
	// Only process OrderPlaced events
	if env.Type != checkout.EventOrderPlaced {
		return nil
	}

	var e checkout.OrderPlaced
	if err := env.Decode(&e); err != nil {
		log.Printf("[Notifier] Failed to decode OrderPlaced event %s: %v", env.ID, err)
		return err
	}
	return h.handleOrderPlaced(e)
}

func (h *Handler) handleOrderPlaced(e checkout.OrderPlaced) error {
	log.Printf("[Notifier] Processing OrderPlaced event for order %s", e.OrderID)

	c := confirmationFor(e)
	if err := h.mailer.SendOrderConfirmation(c); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", c.To, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", c.To, e.OrderID)
	return nil
}

func confirmationFor(e checkout.OrderPlaced) email.Confirmation {
	r, err := region.Parse(e.Region)
	if err != nil {
		r = region.Default
	}

	items := make([]email.OrderItem, 0, len(e.Items))
	for _, line := range e.Items {
		items = append(items, email.OrderItem{
			Name:      line.Name,
			Attribute: line.Attribute,
			Quantity:  line.Quantity,
			UnitPrice: pricing.FormatFor(line.UnitPrice, r),
			LineTotal: pricing.FormatFor(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))), r),
		})
	}

	info := e.Customer
	shipTo := []string{info.FullName(), info.Address}
	shipTo = append(shipTo, fmt.Sprintf("%s, %s %s", info.City, info.State, info.ZipCode), info.Country)
	if info.Phone != "" {
		shipTo = append(shipTo, info.Phone)
	}

	return email.Confirmation{
		To:      strings.TrimSpace(info.Email),
		Name:    info.FirstName,
		OrderID: e.OrderID,
		Items:   items,
		Total:   pricing.FormatFor(e.Total, r),
		ShipTo:  shipTo,
	}
}

package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/sugrae-storefront/internal/checkout"
	"github.com/example/sugrae-storefront/internal/domain/customer"
	"github.com/example/sugrae-storefront/internal/events"
	"github.com/example/sugrae-storefront/internal/notification/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder(regionName string) checkout.OrderPlaced {
	return checkout.OrderPlaced{
		OrderID: "order-1",
		Customer: customer.Info{
			FirstName: "Asha",
			LastName:  "Rao",
			Email:     "asha@example.com",
			Phone:     "+1 555 0100",
			Address:   "1 Rose Lane",
			City:      "Austin",
			State:     "TX",
			ZipCode:   "73301",
			Country:   customer.DefaultCountry,
		},
		Items: []checkout.OrderLine{
			{ProductID: "alpha", Name: "ALPHA", Attribute: "gold", Quantity: 2, UnitPrice: decimal.NewFromInt(1250)},
			{ProductID: "aura", Name: "AURA", Quantity: 1, UnitPrice: decimal.RequireFromString("145.5")},
		},
		Total:    decimal.RequireFromString("2645.5"),
		Currency: "USD",
		Region:   regionName,
		PlacedAt: time.Now().UTC(),
	}
}

func envelopeFor(t *testing.T, eventType string, payload any) events.Envelope {
	t.Helper()
	env, err := events.New(eventType, "order-1", payload)
	require.NoError(t, err)
	return env
}

// ============================================
// HandleEvent Tests
// ============================================

func TestHandleEvent_OrderPlacedSendsConfirmation(t *testing.T) {
	mailer := mocks.NewMockMailer()
	h := NewHandler(mailer)

	err := h.HandleEvent(context.Background(), envelopeFor(t, checkout.EventOrderPlaced, placedOrder("Global")))
	require.NoError(t, err)

	require.Len(t, mailer.Sent, 1)
	c := mailer.Sent[0]
	assert.Equal(t, "asha@example.com", c.To)
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, "order-1", c.OrderID)
	assert.Equal(t, "$2,645.50", c.Total)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "$1,250", c.Items[0].UnitPrice)
	assert.Equal(t, "$2,500", c.Items[0].LineTotal)
	assert.Equal(t, "gold", c.Items[0].Attribute)
	assert.Equal(t, "$145.50", c.Items[1].LineTotal)
	assert.Equal(t, []string{"Asha Rao", "1 Rose Lane", "Austin, TX 73301", "United States", "+1 555 0100"}, c.ShipTo)
}

func TestHandleEvent_UAEPricesUseMarketSymbol(t *testing.T) {
	mailer := mocks.NewMockMailer()
	h := NewHandler(mailer)
	order := placedOrder("UAE")
	order.Items = order.Items[:1]
	order.Total = decimal.NewFromInt(120)
	order.Items[0].UnitPrice = decimal.NewFromInt(60)

	require.NoError(t, h.HandleEvent(context.Background(), envelopeFor(t, checkout.EventOrderPlaced, order)))

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "AED 120", mailer.Sent[0].Total)
}

func TestHandleEvent_IgnoresOtherEvents(t *testing.T) {
	mailer := mocks.NewMockMailer()
	h := NewHandler(mailer)

	require.NoError(t, h.HandleEvent(context.Background(), envelopeFor(t, "RegionChanged", map[string]string{"region": "India"})))

	assert.Empty(t, mailer.Sent)
}

func TestHandleEvent_UndecodablePayload(t *testing.T) {
	h := NewHandler(mocks.NewMockMailer())
	env := envelopeFor(t, checkout.EventOrderPlaced, 1)
	env.Data = json.RawMessage(`{"items": "not a list"}`)

	assert.Error(t, h.HandleEvent(context.Background(), env))
}

func TestHandleEvent_MailerError(t *testing.T) {
	mailer := mocks.NewMockMailer()
	mailer.Err = errors.New("relay down")
	h := NewHandler(mailer)

	err := h.HandleEvent(context.Background(), envelopeFor(t, checkout.EventOrderPlaced, placedOrder("Global")))

	assert.ErrorIs(t, err, mailer.Err)
}

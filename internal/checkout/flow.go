// Package checkout runs the guest checkout form. Order placement is simulated:
// a submitted form always succeeds after a fixed delay and is announced as an
// OrderPlaced event.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/customer"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/events"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/example/sugrae-storefront/internal/watch"
	"github.com/google/uuid"
)

const (
	DefaultSubmitDelay   = 2 * time.Second
	DefaultCompleteDelay = 3 * time.Second
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotEditable   = errors.New("checkout form cannot be changed now")
	ErrInvalidInfo   = errors.New("required checkout fields are missing")
	ErrAlreadyPlaced = errors.New("checkout already submitted")
)

// ValidationError lists the required fields that are blank
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInfo
}

// State is the position in the Filling, Submitting, Complete cycle
type State string

const (
	StateFilling    State = "filling"
	StateSubmitting State = "submitting"
	StateComplete   State = "complete"
)

// Cart is what checkout needs from the cart store
type Cart interface {
	Items() []cart.LineItem
	Clear()
	CloseCheckout()
}

// RegionSource reports the active market
type RegionSource interface {
	Region() region.Region
}

// Config holds the simulated timings
type Config struct {
	SubmitDelay   time.Duration
	CompleteDelay time.Duration
}

// Order is a placed guest order
type Order = OrderPlaced

// Snapshot is a consistent view of the checkout
type Snapshot struct {
	State State         `json:"state"`
	Info  customer.Info `json:"info"`
	Order *Order        `json:"order,omitempty"`
}

// Flow is the checkout state machine for one visitor
type Flow struct {
	cart      Cart
	regions   RegionSource
	publisher events.Publisher
	cfg       Config
	after     func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	state  State
	info   customer.Info
	order  *Order
	timer  *time.Timer
	cancel context.CancelFunc

	hub watch.Hub[Snapshot]
}

// NewFlow returns a flow in the Filling state. Zero delays in cfg are
// replaced with the defaults; a nil publisher only logs orders.
func NewFlow(c Cart, regions RegionSource, publisher events.Publisher, cfg Config) *Flow {
	if cfg.SubmitDelay <= 0 {
		cfg.SubmitDelay = DefaultSubmitDelay
	}
	if cfg.CompleteDelay <= 0 {
		cfg.CompleteDelay = DefaultCompleteDelay
	}
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Flow{
		cart:      c,
		regions:   regions,
		publisher: publisher,
		cfg:       cfg,
		after:     time.After,
		state:     StateFilling,
		info:      customer.NewInfo(),
	}
}

func (f *Flow) publishLocked() Snapshot {
	snap := Snapshot{State: f.state, Info: f.info}
	if f.order != nil {
		o := *f.order
		snap.Order = &o
	}
	return snap
}

func (f *Flow) update(fn func() error) error {
	f.mu.Lock()
	if err := fn(); err != nil {
		f.mu.Unlock()
		return err
	}
	snap := f.publishLocked()
	f.mu.Unlock()
	f.hub.Publish(snap)
	return nil
}

// UpdateInfo replaces the form contents while Filling
func (f *Flow) UpdateInfo(info customer.Info) error {
	return f.update(func() error {
		if f.state != StateFilling {
			return ErrNotEditable
		}
		f.info = info
		return nil
	})
}

// Info returns the form contents
func (f *Flow) Info() customer.Info {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot returns the state, form and last order together
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.publishLocked()
}

// Subscribe registers fn for every checkout change
func (f *Flow) Subscribe(fn func(Snapshot)) func() {
	return f.hub.Subscribe(fn)
}

// Submit validates the form, waits out the simulated placement and completes
// the order. The flow resets itself after the completion delay: the cart is
// cleared, the checkout panel closed and the form emptied. Canceling ctx
// during the wait returns the flow to Filling with the form intact.
func (f *Flow) Submit(ctx context.Context) (Order, error) {
	var info customer.Info
	var subCtx context.Context
	err := f.update(func() error {
		if f.state != StateFilling {
			return ErrAlreadyPlaced
		}
		if missing := f.info.Missing(); len(missing) > 0 {
			return &ValidationError{Missing: missing}
		}
		info = f.info
		f.state = StateSubmitting
		subCtx, f.cancel = context.WithCancel(ctx)
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	items := f.cart.Items()
	if len(items) == 0 {
		_ = f.update(func() error {
			f.state = StateFilling
			f.cancel()
			return nil
		})
		return Order{}, ErrEmptyCart
	}

	select {
	case <-f.after(f.cfg.SubmitDelay):
	case <-subCtx.Done():
	}

	// A cancel that lands as the delay ends still wins
	order := f.buildOrder(info, items)
	var canceled error
	_ = f.update(func() error {
		canceled = subCtx.Err()
		f.cancel()
		if canceled != nil {
			f.state = StateFilling
			return nil
		}
		f.state = StateComplete
		f.order = &order
		f.timer = time.AfterFunc(f.cfg.CompleteDelay, f.reset)
		return nil
	})
	if canceled != nil {
		return Order{}, canceled
	}
	f.announce(ctx, order)

	log.Printf("[Checkout] Order %s placed: %d lines, %s %s", order.OrderID, len(order.Items), order.Total.StringFixed(2), order.Currency)
	return order, nil
}

func (f *Flow) buildOrder(info customer.Info, items []cart.LineItem) Order {
	r := f.regions.Region()
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		q := pricing.Resolve(item.Product, r)
		lines = append(lines, OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			VariantID: q.VariantID,
			Attribute: string(item.Attribute),
			Quantity:  item.Quantity,
			UnitPrice: q.Price,
		})
	}

	return Order{
		OrderID:  uuid.New().String(),
		Customer: info,
		Items:    lines,
		Total:    cart.TotalOf(items, r),
		Currency: r.Market().Currency,
		Region:   r.String(),
		PlacedAt: time.Now().UTC(),
	}
}

// announce publishes the order event. Placement is simulated and always
// succeeds, so a publish failure is only logged.
func (f *Flow) announce(ctx context.Context, order Order) {
	env, err := events.New(EventOrderPlaced, order.OrderID, order)
	if err == nil {
		err = f.publisher.Publish(context.WithoutCancel(ctx), env)
	}
	if err != nil {
		log.Printf("[Checkout] Failed to publish order %s: %v", order.OrderID, err)
	}
}

// reset returns a completed checkout to a fresh form
func (f *Flow) reset() {
	f.mu.Lock()
	if f.state != StateComplete {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.cart.Clear()
	f.cart.CloseCheckout()

	_ = f.update(func() error {
		f.state = StateFilling
		f.info = customer.NewInfo()
		f.timer = nil
		return nil
	})
}

// Close hides the checkout panel and empties the form. Closing a completed
// checkout performs the reset immediately. A submission in progress is
// canceled.
func (f *Flow) Close() {
	f.mu.Lock()
	state := f.state
	if f.timer != nil {
		f.timer.Stop()
	}
	if state == StateSubmitting && f.cancel != nil {
		f.cancel()
	}
	f.mu.Unlock()

	if state == StateComplete {
		f.reset()
		return
	}

	f.cart.CloseCheckout()
	_ = f.update(func() error {
		f.info = customer.NewInfo()
		return nil
	})
}

// Stop cancels pending timers. The flow must not be used afterwards.
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	if f.cancel != nil {
		f.cancel()
	}
}

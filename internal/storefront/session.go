// Package storefront composes the per-visitor stores into sessions.
//
// The catalog is shared by every visitor. Region, cart, identity and checkout
// state belong to one visitor and persist under that visitor's key prefix.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/catalog"
	"github.com/example/sugrae-storefront/internal/checkout"
	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/events"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/example/sugrae-storefront/internal/identity"
	"github.com/example/sugrae-storefront/internal/infrastructure/store"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrNoVisitor    = errors.New("visitor id is required")
	ErrNoNewsletter = errors.New("newsletter is not configured")
	ErrNoShopDomain = errors.New("shop domain is not configured")
	ErrMissingDeps  = errors.New("storefront dependencies are incomplete")
)

// Subscriber signs an email address up for the newsletter
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (gateway.SubscribeOutcome, error)
}

// Deps are the collaborators shared by every session
type Deps struct {
	Catalog    *catalog.Store
	Gateway    identity.Gateway
	KV         store.KV
	Codec      *auth.SessionCodec
	Detector   region.Detector
	Publisher  events.Publisher
	Newsletter Subscriber
	Checkout   checkout.Config
	ShopDomain string
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return fmt.Errorf("%w: catalog", ErrMissingDeps)
	case d.Gateway == nil:
		return fmt.Errorf("%w: gateway", ErrMissingDeps)
	case d.Codec == nil:
		return fmt.Errorf("%w: session codec", ErrMissingDeps)
	}
	return nil
}

// Session is one visitor's storefront state
type Session struct {
	ID       string
	Region   *region.Store
	Cart     *cart.Store
	Identity *identity.Store
	Checkout *checkout.Flow

	catalog    *catalog.Store
	newsletter Subscriber
	shopDomain string

	mu       sync.Mutex
	lastSeen time.Time
}

// NewSession builds the visitor's stores and restores persisted region and
// customer session state. clientIP, when known, seeds region detection.
// Restoring never fails; unreadable state is ignored.
func NewSession(ctx context.Context, id, clientIP string, deps Deps) (*Session, error) {
	if id == "" {
		return nil, ErrNoVisitor
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.KV == nil {
		deps.KV = store.NewMemoryKV()
	}
	kv := store.Scoped(deps.KV, "visitor:"+id)

	regions := region.NewStore(kv, deps.Detector)
	c := cart.NewStore()
	s := &Session{
		ID:         id,
		Region:     regions,
		Cart:       c,
		Identity:   identity.NewStore(deps.Gateway, kv, deps.Codec),
		Checkout:   checkout.NewFlow(c, regions, deps.Publisher, deps.Checkout),
		catalog:    deps.Catalog,
		newsletter: deps.Newsletter,
		shopDomain: deps.ShopDomain,
		lastSeen:   time.Now(),
	}

	regions.Init(ctx, clientIP)
	s.Identity.Restore(ctx)
	return s, nil
}

// AddToCart looks productID up in the catalog and adds one unit of it
func (s *Session) AddToCart(productID string) error {
	p, err := s.catalog.Product(productID)
	if err != nil {
		return err
	}
	return s.Cart.AddItem(p)
}

// Total is the cart total in the visitor's region
func (s *Session) Total() decimal.Decimal {
	return s.Cart.Total(s.Region.Region())
}

// FormattedTotal is Total rendered in the region's currency
func (s *Session) FormattedTotal() string {
	return pricing.FormatFor(s.Total(), s.Region.Region())
}

// Permalink returns the hosted checkout URL for the current cart
func (s *Session) Permalink() (string, error) {
	if s.shopDomain == "" {
		return "", ErrNoShopDomain
	}
	return checkout.CartPermalink(s.shopDomain, s.Cart.Items(), s.Region.Region())
}

// SubscribeNewsletter signs email up for the newsletter
func (s *Session) SubscribeNewsletter(ctx context.Context, email string) (gateway.SubscribeOutcome, error) {
	if s.newsletter == nil {
		return "", ErrNoNewsletter
	}
	return s.newsletter.Subscribe(ctx, email)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen is when the session was last looked up
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops the session's timers
func (s *Session) Close() {
	s.Checkout.Stop()
}

// Package catalog holds the product list shown by the storefront, merged from
// one backend fetch per market and backed by a built-in fallback catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/example/sugrae-storefront/internal/watch"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is how many products are requested per market
const DefaultPageSize = 20

var (
	ErrEmptyCatalog = errors.New("no products found in store")
	ErrNoBackend    = errors.New("commerce backend not configured")
)

// NotFoundError is returned for a product id absent from the current catalog
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.ID)
}

// State is the lifecycle of the catalog
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateDegraded      State = "degraded"
)

// Fetcher loads raw catalog entries for one market
type Fetcher interface {
	FetchProducts(ctx context.Context, first int, country string) ([]gateway.CatalogEntry, error)
}

// Snapshot is a consistent view of the catalog. Live is false while the
// products are the built-in fallback.
type Snapshot struct {
	State    State             `json:"state"`
	Products []product.Product `json:"products"`
	Error    string            `json:"error,omitempty"`
	Live     bool              `json:"live"`
}

// Store holds the merged catalog. Concurrent refreshes are not coordinated:
// whichever finishes last wins.
type Store struct {
	fetcher  Fetcher
	regions  []region.Region
	pageSize int

	mu       sync.RWMutex
	state    State
	products []product.Product
	lastErr  error
	live     bool

	hub watch.Hub[Snapshot]
}

// NewStore returns an uninitialized store holding the fallback catalog.
// A nil fetcher keeps the store on the fallback catalog.
func NewStore(fetcher Fetcher) *Store {
	return &Store{
		fetcher:  fetcher,
		regions:  region.All(),
		pageSize: DefaultPageSize,
		state:    StateUninitialized,
		products: product.Fallback(),
	}
}

// WithPageSize overrides how many products are requested per market
func (s *Store) WithPageSize(n int) *Store {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Load performs the initial fetch
func (s *Store) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh fetches every market concurrently and swaps in the merged catalog.
// On any failure or an empty result the previous catalog is kept, the store
// goes Degraded and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()
	s.hub.Publish(s.Snapshot())

	merged, err := s.fetchAll(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateDegraded
		s.lastErr = err
	} else {
		s.state = StateReady
		s.products = merged
		s.lastErr = nil
		s.live = true
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("[Catalog] Refresh failed, keeping %d products: %v", len(s.Products()), err)
	} else {
		log.Printf("[Catalog] Loaded %d products from %d markets", len(merged), len(s.regions))
	}
	s.hub.Publish(s.Snapshot())
	return err
}

// Run refreshes the catalog every interval until ctx is done. Failures are
// logged by Refresh and leave the previous catalog in place.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

func (s *Store) fetchAll(ctx context.Context) ([]product.Product, error) {
	if s.fetcher == nil {
		return nil, ErrNoBackend
	}

	results := make([][]gateway.CatalogEntry, len(s.regions))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range s.regions {
		g.Go(func() error {
			entries, err := s.fetcher.FetchProducts(gctx, s.pageSize, r.Market().CountryCode)
			if err != nil {
				return fmt.Errorf("fetching %s catalog: %w", r, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(s.regions, results)
	if len(merged) == 0 {
		return nil, ErrEmptyCatalog
	}
	return merged, nil
}

// Products returns a copy of the current catalog
func (s *Store) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.products)
}

// Product looks up a product by id
func (s *Store) Product(id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return product.Product{}, &NotFoundError{ID: id}
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error of the last failed refresh, nil after a success
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns the current state, products and error together
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		State:    s.state,
		Products: cloneAll(s.products),
		Live:     s.live,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Subscribe registers fn for every state change
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.hub.Subscribe(fn)
}

func cloneAll(in []product.Product) []product.Product {
	out := make([]product.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

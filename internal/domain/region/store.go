package region

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/sugrae-storefront/internal/infrastructure/store"
	"github.com/example/sugrae-storefront/internal/watch"
)

// DefaultDetectTimeout bounds the geolocation lookup during Init
const DefaultDetectTimeout = 3 * time.Second

// Detector resolves the country code of a client address, best effort
type Detector interface {
	CountryCode(ctx context.Context, clientIP string) (string, error)
}

// Source of the active region
type Source string

const (
	SourceDefault   Source = "default"
	SourcePersisted Source = "persisted"
	SourceDetected  Source = "detected"
	SourceExplicit  Source = "explicit"
)

// Snapshot is the observable state of the region store
type Snapshot struct {
	Region Region       `json:"region"`
	Source Source       `json:"source"`
	Market MarketConfig `json:"market"`
}

// Store holds the active market for one visitor
type Store struct {
	kv            store.KV
	detector      Detector
	detectTimeout time.Duration

	mu     sync.RWMutex
	region Region
	source Source

	hub watch.Hub[Snapshot]
}

// NewStore creates a region store starting at the default region.
// detector may be nil, in which case Init skips geolocation.
func NewStore(kv store.KV, detector Detector) *Store {
	return &Store{
		kv:            kv,
		detector:      detector,
		detectTimeout: DefaultDetectTimeout,
		region:        Default,
		source:        SourceDefault,
	}
}

// WithDetectTimeout overrides the geolocation timeout
func (s *Store) WithDetectTimeout(d time.Duration) *Store {
	s.detectTimeout = d
	return s
}

// Init resolves the initial region: a valid persisted choice wins, then
// geolocation of clientIP, then the default. An empty clientIP skips
// geolocation. Init never persists and never fails.
func (s *Store) Init(ctx context.Context, clientIP string) Region {
	if r, ok := s.persisted(ctx); ok {
		s.set(r, SourcePersisted)
		return r
	}

	if r, ok := s.detect(ctx, clientIP); ok {
		s.set(r, SourceDetected)
		return r
	}

	s.set(Default, SourceDefault)
	return Default
}

func (s *Store) persisted(ctx context.Context) (Region, bool) {
	value, ok, err := s.kv.Get(ctx, store.KeySelectedRegion)
	if err != nil {
		log.Printf("[Region] Failed to read persisted region: %v", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	r := Region(value)
	if !r.Valid() {
		log.Printf("[Region] Ignoring unknown persisted region %q", value)
		return "", false
	}
	return r, true
}

func (s *Store) detect(ctx context.Context, clientIP string) (Region, bool) {
	if s.detector == nil || clientIP == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.detectTimeout)
	defer cancel()

	code, err := s.detector.CountryCode(ctx, clientIP)
	if err != nil {
		log.Printf("[Region] Geolocation failed, using default: %v", err)
		return "", false
	}
	r, ok := FromCountryCode(code)
	if !ok {
		return "", false
	}
	return r, true
}

// SetRegion changes the region on explicit user action and persists the choice
func (s *Store) SetRegion(ctx context.Context, r Region) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, r)
	}
	if err := s.kv.Set(ctx, store.KeySelectedRegion, string(r)); err != nil {
		return fmt.Errorf("failed to persist region: %w", err)
	}
	s.set(r, SourceExplicit)
	return nil
}

func (s *Store) set(r Region, src Source) {
	s.mu.Lock()
	s.region = r
	s.source = src
	s.mu.Unlock()

	s.hub.Publish(s.Snapshot())
}

// Region returns the active region
func (s *Store) Region() Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

// MarketConfig returns the configuration of the active region
func (s *Store) MarketConfig() MarketConfig {
	return s.Region().Market()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Region: s.region,
		Source: s.source,
		Market: s.region.Market(),
	}
}

// Subscribe registers fn for region changes
func (s *Store) Subscribe(fn func(Snapshot)) (dispose func()) {
	return s.hub.Subscribe(fn)
}

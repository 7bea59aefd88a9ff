package region

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type cachedCountry struct {
	code      string
	expiresAt time.Time
}

// CachingDetector remembers the country of recently resolved addresses so a
// burst of new sessions from one address costs a single lookup. Failed
// lookups are not cached.
type CachingDetector struct {
	next  Detector
	ttl   time.Duration
	now   func() time.Time
	cache *lru.Cache
}

// NewCachingDetector wraps next with an LRU cache of size entries, each kept for ttl
func NewCachingDetector(next Detector, size int, ttl time.Duration) (*CachingDetector, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating geolocation cache: %w", err)
	}
	return &CachingDetector{next: next, ttl: ttl, now: time.Now, cache: cache}, nil
}

// CountryCode returns the cached country of clientIP, looking it up on a miss
func (d *CachingDetector) CountryCode(ctx context.Context, clientIP string) (string, error) {
	if v, ok := d.cache.Get(clientIP); ok {
		entry := v.(cachedCountry)
		if d.now().Before(entry.expiresAt) {
			return entry.code, nil
		}
		d.cache.Remove(clientIP)
	}

	code, err := d.next.CountryCode(ctx, clientIP)
	if err != nil {
		return "", err
	}
	d.cache.Add(clientIP, cachedCountry{code: code, expiresAt: d.now().Add(d.ttl)})
	return code, nil
}

// Len is the number of cached addresses
func (d *CachingDetector) Len() int {
	return d.cache.Len()
}

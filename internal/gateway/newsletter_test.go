package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listServer accepts each address once and answers 409 afterwards
type listServer struct {
	mu         sync.Mutex
	subscribed map[string]bool
	requests   []subscriptionRequest
	authHeader string
	status     int
}

func (l *listServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	l.requests = append(l.requests, req)
	l.authHeader = r.Header.Get("Authorization")

	if l.status != 0 {
		w.WriteHeader(l.status)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"upstream exploded"}]}`))
		return
	}
	email := req.Data.Attributes.Email
	if l.subscribed[email] {
		w.WriteHeader(http.StatusConflict)
		return
	}
	l.subscribed[email] = true
	w.WriteHeader(http.StatusAccepted)
}

func newListServer(t *testing.T) (*listServer, *Newsletter) {
	t.Helper()
	ls := &listServer{subscribed: make(map[string]bool)}
	srv := httptest.NewServer(ls)
	t.Cleanup(srv.Close)

	n, err := NewNewsletter(NewsletterConfig{Endpoint: srv.URL, ListID: "LIST-1", APIKey: "pk_test"})
	require.NoError(t, err)
	return ls, n
}

// ============================================
// Email Validation Tests
// ============================================

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"asha@example.com", true},
		{"  asha@example.com ", true},
		{"first.last+tag@sub.example.co", true},
		{"", false},
		{"asha", false},
		{"asha@example", false},
		{"as ha@example.com", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var lve *LocalValidationError
			require.ErrorAs(t, err, &lve)
			assert.Equal(t, "email", lve.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// ============================================
// Subscribe Tests
// ============================================

func TestSubscribe_IsIdempotent(t *testing.T) {
	ls, n := newListServer(t)
	ctx := context.Background()

	first, err := n.Subscribe(ctx, "fan@example.com")
	require.NoError(t, err)
	second, err := n.Subscribe(ctx, "fan@example.com")
	require.NoError(t, err)

	assert.Equal(t, Subscribed, first)
	assert.Equal(t, AlreadySubscribed, second)
	require.Len(t, ls.requests, 2)
	assert.Equal(t, "subscription", ls.requests[0].Data.Type)
	assert.Equal(t, "LIST-1", ls.requests[0].Data.Attributes.ListID)
	assert.Equal(t, "Bearer pk_test", ls.authHeader)
}

func TestSubscribe_InvalidEmailMakesNoRequest(t *testing.T) {
	ls, n := newListServer(t)

	_, err := n.Subscribe(context.Background(), "not-an-email")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, ls.requests)
}

func TestSubscribe_ServerError(t *testing.T) {
	ls, n := newListServer(t)
	ls.status = http.StatusInternalServerError

	_, err := n.Subscribe(context.Background(), "fan@example.com")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, te.Body, "upstream exploded")
	assert.ErrorIs(t, err, ErrSubscription)
}

func TestNewNewsletter_Validation(t *testing.T) {
	_, err := NewNewsletter(NewsletterConfig{ListID: "L"})
	assert.Error(t, err)
	_, err = NewNewsletter(NewsletterConfig{Endpoint: "https://list.example"})
	assert.Error(t, err)
}

// ============================================
// Geolocation Tests
// ============================================

func TestGeoLocator_CountryCode(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		code := map[string]string{"/203.0.113.9/json/": "ae", "/198.51.100.4/json/": "in"}[r.URL.Path]
		_, _ = w.Write([]byte(`{"country_code":"` + code + `"}`))
	}))
	t.Cleanup(srv.Close)
	geo := NewGeoLocator(srv.URL, nil)

	first, err := geo.CountryCode(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	second, err := geo.CountryCode(context.Background(), "::ffff:198.51.100.4")
	require.NoError(t, err)

	assert.Equal(t, "AE", first)
	assert.Equal(t, "IN", second)
	assert.Equal(t, []string{"/203.0.113.9/json/", "/198.51.100.4/json/"}, paths)
}

func TestGeoLocator_LocalAddressesSkipLookup(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"country_code":"us"}`))
	}))
	t.Cleanup(srv.Close)
	geo := NewGeoLocator(srv.URL, nil)

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.10", "::1", "0.0.0.0"} {
		code, err := geo.CountryCode(context.Background(), ip)
		require.NoError(t, err, ip)
		assert.Empty(t, code, ip)
	}
	assert.Zero(t, calls)

	_, err := geo.CountryCode(context.Background(), "not-an-ip")
	var lve *LocalValidationError
	assert.ErrorAs(t, err, &lve)
}

func TestGeoLocator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`},
		{"error payload", http.StatusOK, `{"error":true,"reason":"RateLimited"}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeoLocator(srv.URL, nil).CountryCode(context.Background(), "203.0.113.9")

			assert.ErrorIs(t, err, ErrTransport)
		})
	}
}

func TestNewGeoLocator_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultGeoEndpoint, NewGeoLocator("", nil).endpoint)
	assert.Equal(t, "https://ipapi.co", NewGeoLocator("https://ipapi.co/json/", nil).endpoint)
}

// ============================================
// Offline Tests
// ============================================

func TestOffline_FailsWithTransportError(t *testing.T) {
	var o Offline

	_, err := o.FetchProducts(context.Background(), 20, "US")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = o.CustomerLogin(context.Background(), "a@b.co", "secret")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "customerAccessTokenCreate", te.Op)

	_, err = o.CreateCustomerAccount(context.Background(), AccountInput{})
	assert.ErrorIs(t, err, ErrAccountCreation)
}

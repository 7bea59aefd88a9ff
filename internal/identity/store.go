// Package identity holds the visitor's customer session and wraps login and
// signup against the commerce backend.
package identity

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/domain/customer"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/example/sugrae-storefront/internal/infrastructure/store"
	"github.com/example/sugrae-storefront/internal/watch"
)

// Gateway is the part of the commerce backend the identity store needs
type Gateway interface {
	CustomerLogin(ctx context.Context, email, password string) (gateway.CustomerData, error)
	CreateCustomerAccount(ctx context.Context, in gateway.AccountInput) (gateway.Customer, error)
}

// SignupInput is the account form
type SignupInput struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone,omitempty"`
	AcceptsMarketing bool   `json:"accepts_marketing"`
}

// Snapshot is a consistent view of the identity state
type Snapshot struct {
	Authenticated bool              `json:"authenticated"`
	Session       *customer.Session `json:"session,omitempty"`
	AuthModalOpen bool              `json:"auth_modal_open"`
	Error         string            `json:"error,omitempty"`
}

// Store holds zero or one customer session
type Store struct {
	gw    Gateway
	kv    store.KV
	codec *auth.SessionCodec

	mu        sync.RWMutex
	session   *customer.Session
	modalOpen bool
	lastErr   error

	hub watch.Hub[Snapshot]
}

// NewStore returns an unauthenticated store
func NewStore(gw Gateway, kv store.KV, codec *auth.SessionCodec) *Store {
	return &Store{gw: gw, kv: kv, codec: codec}
}

func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Store) fail(err error) error {
	s.update(func() { s.lastErr = err })
	return err
}

func requireCredentials(email, password string) error {
	if email == "" {
		return &gateway.LocalValidationError{Field: "email", Message: "email is required"}
	}
	if password == "" {
		return &gateway.LocalValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// Login authenticates against the backend. The session is persisted only when
// remember is true; otherwise any previously persisted session is removed.
// On failure the store keeps whatever state it had before.
func (s *Store) Login(ctx context.Context, email, password string, remember bool) (customer.Session, error) {
	email = strings.TrimSpace(email)
	if err := requireCredentials(email, password); err != nil {
		return customer.Session{}, s.fail(err)
	}

	data, err := s.gw.CustomerLogin(ctx, email, password)
	if err != nil {
		log.Printf("[Identity] Login failed: %v", err)
		return customer.Session{}, s.fail(err)
	}

	session := customer.Session{
		ID:          data.ID,
		Email:       data.Email,
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		DisplayName: customer.DisplayName(data.DisplayName, data.FirstName, data.LastName, data.Email),
		AccessToken: data.AccessToken,
		ExpiresAt:   data.ExpiresAt,
	}
	if session.Email == "" {
		session.Email = email
		session.DisplayName = customer.DisplayName(data.DisplayName, data.FirstName, data.LastName, email)
	}

	if remember {
		s.persist(ctx, session)
	} else {
		s.forget(ctx)
	}

	s.update(func() {
		s.session = &session
		s.modalOpen = false
		s.lastErr = nil
	})
	log.Printf("[Identity] Customer %s logged in (remember=%t)", session.ID, remember)
	return session, nil
}

// Signup creates an account and then logs in with the same credentials,
// persisting the session. Nothing is retained if either step fails.
func (s *Store) Signup(ctx context.Context, in SignupInput) (customer.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := gateway.ValidateEmail(in.Email); err != nil {
		return customer.Session{}, s.fail(err)
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return customer.Session{}, s.fail(&gateway.LocalValidationError{Field: "password", Message: err.Error()})
	}

	_, err := s.gw.CreateCustomerAccount(ctx, gateway.AccountInput{
		Email:            in.Email,
		Password:         in.Password,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Phone:            strings.TrimSpace(in.Phone),
		AcceptsMarketing: in.AcceptsMarketing,
	})
	if err != nil {
		log.Printf("[Identity] Signup failed: %v", err)
		return customer.Session{}, s.fail(err)
	}

	return s.Login(ctx, in.Email, in.Password, true)
}

// Logout clears the session and any persisted copy. The in-memory session is
// cleared even if removing the persisted copy fails.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func() {
		s.session = nil
		s.lastErr = nil
	})
	if err := s.kv.Delete(ctx, store.KeyCustomerSession); err != nil {
		return fmt.Errorf("removing persisted session: %w", err)
	}
	return nil
}

// Restore loads a persisted session without contacting the backend. A stored
// value that fails verification or has expired is removed. It reports whether
// a session was restored.
func (s *Store) Restore(ctx context.Context) bool {
	raw, ok, err := s.kv.Get(ctx, store.KeyCustomerSession)
	if err != nil {
		log.Printf("[Identity] Failed to read persisted session: %v", err)
		return false
	}
	if !ok {
		return false
	}

	session, err := s.codec.Decode(raw)
	if err != nil {
		log.Printf("[Identity] Discarding persisted session: %v", err)
		if err := s.kv.Delete(ctx, store.KeyCustomerSession); err != nil {
			log.Printf("[Identity] Failed to remove persisted session: %v", err)
		}
		return false
	}

	s.update(func() { s.session = &session })
	return true
}

func (s *Store) persist(ctx context.Context, session customer.Session) {
	token, err := s.codec.Encode(session)
	if err == nil {
		err = s.kv.Set(ctx, store.KeyCustomerSession, token)
	}
	if err != nil {
		log.Printf("[Identity] Failed to persist session: %v", err)
	}
}

func (s *Store) forget(ctx context.Context) {
	if err := s.kv.Delete(ctx, store.KeyCustomerSession); err != nil {
		log.Printf("[Identity] Failed to remove persisted session: %v", err)
	}
}

// OpenAuthModal shows the login form
func (s *Store) OpenAuthModal() { s.update(func() { s.modalOpen = true }) }

// CloseAuthModal hides the login form and clears its error
func (s *Store) CloseAuthModal() {
	s.update(func() {
		s.modalOpen = false
		s.lastErr = nil
	})
}

// Session returns the active session, if any
func (s *Store) Session() (customer.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return customer.Session{}, false
	}
	return *s.session, true
}

// IsAuthenticated reports whether a session is active
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Err returns the error of the last failed login or signup
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns the identity state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every identity change
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.hub.Subscribe(fn)
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Authenticated: s.session != nil,
		AuthModalOpen: s.modalOpen,
	}
	if s.session != nil {
		cp := *s.session
		snap.Session = &cp
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

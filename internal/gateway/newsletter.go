package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
)

// SubscribeOutcome distinguishes a new subscription from an idempotent repeat
type SubscribeOutcome string

const (
	Subscribed        SubscribeOutcome = "subscribed"
	AlreadySubscribed SubscribeOutcome = "already_subscribed"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the shape of an address without any network call
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &LocalValidationError{Field: "email", Message: "email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &LocalValidationError{Field: "email", Message: "email address is not valid"}
	}
	return nil
}

// NewsletterConfig configures the newsletter provider client
type NewsletterConfig struct {
	Endpoint   string
	ListID     string
	APIKey     string
	HTTPClient *http.Client
}

// Newsletter subscribes emails to the marketing list
type Newsletter struct {
	client   *http.Client
	endpoint string
	listID   string
	apiKey   string
}

// NewNewsletter validates cfg and returns a client
func NewNewsletter(cfg NewsletterConfig) (*Newsletter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("newsletter endpoint is required")
	}
	if cfg.ListID == "" {
		return nil, errors.New("newsletter list id is required")
	}
	return &Newsletter{
		client:   defaultClient(cfg.HTTPClient),
		endpoint: cfg.Endpoint,
		listID:   cfg.ListID,
		apiKey:   cfg.APIKey,
	}, nil
}

type subscriptionRequest struct {
	Data subscriptionData `json:"data"`
}

type subscriptionData struct {
	Type       string                 `json:"type"`
	Attributes subscriptionAttributes `json:"attributes"`
}

type subscriptionAttributes struct {
	ListID string `json:"list_id"`
	Email  string `json:"email"`
}

// Subscribe adds email to the list. An already-subscribed address is a success.
func (n *Newsletter) Subscribe(ctx context.Context, email string) (SubscribeOutcome, error) {
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)

	headers := map[string]string{}
	if n.apiKey != "" {
		headers["Authorization"] = "Bearer " + n.apiKey
	}

	const op = "subscribe"
	resp, err := do(ctx, n.client, http.MethodPost, n.endpoint, subscriptionRequest{
		Data: subscriptionData{
			Type:       "subscription",
			Attributes: subscriptionAttributes{ListID: n.listID, Email: email},
		},
	}, headers)
	if err != nil {
		log.Printf("[Gateway] Newsletter request failed: %v", err)
		return "", &TransportError{Op: op, StatusCode: resp.status, Message: err.Error(), Kind: ErrSubscription, Err: err}
	}

	switch {
	case resp.ok():
		log.Printf("[Gateway] Newsletter subscription accepted")
		return Subscribed, nil
	case resp.status == http.StatusConflict:
		return AlreadySubscribed, nil
	default:
		log.Printf("[Gateway] Newsletter returned status %d", resp.status)
		return "", &TransportError{
			Op:         op,
			StatusCode: resp.status,
			Body:       string(resp.body),
			Message:    "Something went wrong. Please try again.",
			Kind:       ErrSubscription,
		}
	}
}

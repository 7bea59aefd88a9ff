package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// DefaultAPIVersion is the Storefront API version segment of the endpoint path
const DefaultAPIVersion = "2024-10"

// Config configures the storefront GraphQL client
type Config struct {
	Domain      string
	AccessToken string
	APIVersion  string
	// BaseURL replaces https://<Domain> when set
	BaseURL    string
	HTTPClient *http.Client
}

// Storefront calls the commerce backend's storefront GraphQL API
type Storefront struct {
	client      *http.Client
	endpoint    string
	accessToken string
}

// NewStorefront validates cfg and returns a client
func NewStorefront(cfg Config) (*Storefront, error) {
	if cfg.Domain == "" && cfg.BaseURL == "" {
		return nil, errors.New("store domain is required")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("storefront access token is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://" + cfg.Domain
	}

	return &Storefront{
		client:      defaultClient(cfg.HTTPClient),
		endpoint:    fmt.Sprintf("%s/api/%s/graphql.json", base, version),
		accessToken: cfg.AccessToken,
	}, nil
}

// Endpoint returns the GraphQL URL requests are posted to
func (s *Storefront) Endpoint() string {
	return s.endpoint
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query posts a GraphQL document and decodes data into out
func (s *Storefront) query(ctx context.Context, op, document string, vars map[string]any, out any) error {
	resp, err := do(ctx, s.client, http.MethodPost, s.endpoint,
		graphQLRequest{Query: document, Variables: vars},
		map[string]string{"X-Shopify-Storefront-Access-Token": s.accessToken},
	)
	if err != nil {
		log.Printf("[Gateway] %s request failed: %v", op, err)
		return &TransportError{Op: op, StatusCode: resp.status, Message: err.Error(), Kind: ErrQuery, Err: err}
	}

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(resp.body, &envelope)

	if !resp.ok() {
		msg := statusMessage(resp.status)
		if decodeErr == nil && len(envelope.Errors) > 0 && envelope.Errors[0].Message != "" {
			msg = envelope.Errors[0].Message
		}
		log.Printf("[Gateway] %s returned status %d", op, resp.status)
		return &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: msg, Kind: ErrQuery}
	}
	if decodeErr != nil {
		return &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: "malformed response", Kind: ErrQuery, Err: decodeErr}
	}
	if len(envelope.Errors) > 0 {
		log.Printf("[Gateway] %s returned %d GraphQL errors", op, len(envelope.Errors))
		return &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: envelope.Errors[0].Message, Kind: ErrQuery}
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: "malformed response data", Kind: ErrQuery, Err: err}
	}
	return nil
}

// userError is a customerUserErrors[] entry
type userError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (u userError) toError(op string, kind error, fallback string) *BackendValidationError {
	msg := u.Message
	if msg == "" {
		msg = fallback
	}
	return &BackendValidationError{Op: op, Code: u.Code, Field: u.Field, Message: msg, Kind: kind}
}

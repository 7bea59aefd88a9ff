package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/netip"
	"strings"
)

// DefaultGeoEndpoint is the base URL of the lookup service. Lookups go to
// <endpoint>/<ip>/json/.
const DefaultGeoEndpoint = "https://ipapi.co"

// GeoLocator looks up a visitor's country by IP address. It is best effort:
// callers are expected to apply their own deadline and fall back on any error.
type GeoLocator struct {
	client   *http.Client
	endpoint string
}

// NewGeoLocator returns a locator for endpoint, or DefaultGeoEndpoint if empty
func NewGeoLocator(endpoint string, client *http.Client) *GeoLocator {
	if endpoint == "" {
		endpoint = DefaultGeoEndpoint
	}
	endpoint = strings.TrimSuffix(strings.TrimSuffix(endpoint, "/"), "/json")
	return &GeoLocator{client: defaultClient(client), endpoint: endpoint}
}

type geoResponse struct {
	CountryCode string `json:"country_code"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// CountryCode returns the upper-case ISO country code of ip, possibly empty.
// Private, loopback and unspecified addresses resolve to "" without a lookup.
func (g *GeoLocator) CountryCode(ctx context.Context, ip string) (string, error) {
	const op = "geolocate"
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", &LocalValidationError{Field: "ip", Message: "client address is not valid"}
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return "", nil
	}

	resp, err := do(ctx, g.client, http.MethodGet, g.endpoint+"/"+addr.String()+"/json/", nil, nil)
	if err != nil {
		return "", &TransportError{Op: op, Message: err.Error(), Err: err}
	}
	if !resp.ok() {
		return "", &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: statusMessage(resp.status)}
	}

	var out geoResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: "malformed response", Err: err}
	}
	if out.Error {
		return "", &TransportError{Op: op, StatusCode: resp.status, Body: string(resp.body), Message: out.Reason}
	}
	return strings.ToUpper(strings.TrimSpace(out.CountryCode)), nil
}

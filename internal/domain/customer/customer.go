package customer

import (
	"strings"
	"time"
)

// DefaultCountry is preselected on a fresh checkout form
const DefaultCountry = "United States"

// Session is an authenticated customer. A zero ExpiresAt means the backend
// did not report an expiry.
type Session struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	DisplayName string    `json:"display_name"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// Expired reports whether the backend token has passed its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// DisplayName picks the name shown for a customer: the backend display name,
// else trimmed "first last" when a first name exists, else the email local part.
func DisplayName(backend, first, last, email string) string {
	if name := strings.TrimSpace(backend); name != "" {
		return name
	}
	if strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first + " " + last)
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Info is the guest checkout contact and shipping form
type Info struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// NewInfo returns an empty form with the default country
func NewInfo() Info {
	return Info{Country: DefaultCountry}
}

// Missing returns the JSON names of required fields that are blank, in form order
func (i Info) Missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", i.FirstName},
		{"last_name", i.LastName},
		{"email", i.Email},
		{"address", i.Address},
		{"city", i.City},
		{"state", i.State},
		{"zip_code", i.ZipCode},
		{"country", i.Country},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// FullName is the name printed on shipping labels and confirmations
func (i Info) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

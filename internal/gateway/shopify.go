package gateway

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

const productsQuery = `
query getProducts($first: Int!, $country: CountryCode) @inContext(country: $country) {
  products(first: $first) {
    edges {
      node {
        id
        title
        description
        handle
        images(first: 5) {
          edges { node { url altText } }
        }
        variants(first: 10) {
          edges {
            node {
              id
              title
              price { amount currencyCode }
              availableForSale
              selectedOptions { name value }
            }
          }
        }
      }
    }
  }
}`

const customerCreateMutation = `
mutation customerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id email firstName lastName }
    customerUserErrors { code field message }
  }
}`

const accessTokenMutation = `
mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    customerUserErrors { code field message }
  }
}`

const customerQuery = `
query getCustomer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    id
    email
    firstName
    lastName
    displayName
  }
}`

// Money is a price in the currency of the requested market
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// Image is a product image reference
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// SelectedOption is a variant option such as Size=50ml
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable SKU of a catalog entry
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Price            Money            `json:"price"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
}

// CatalogEntry is a product as returned by the backend for one market
type CatalogEntry struct {
	ID          string
	Title       string
	Description string
	Handle      string
	Images      []Image
	Variants    []Variant
}

type productsData struct {
	Products struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Title       string `json:"title"`
				Description string `json:"description"`
				Handle      string `json:"handle"`
				Images      struct {
					Edges []struct {
						Node Image `json:"node"`
					} `json:"edges"`
				} `json:"images"`
				Variants struct {
					Edges []struct {
						Node Variant `json:"node"`
					} `json:"edges"`
				} `json:"variants"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// FetchProducts returns up to first catalog entries priced for country.
// An empty country uses the backend's default market.
func (s *Storefront) FetchProducts(ctx context.Context, first int, country string) ([]CatalogEntry, error) {
	vars := map[string]any{"first": first}
	if country != "" {
		vars["country"] = country
	}

	var data productsData
	if err := s.query(ctx, "fetchProducts", productsQuery, vars, &data); err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		n := edge.Node
		entry := CatalogEntry{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Handle:      n.Handle,
		}
		for _, img := range n.Images.Edges {
			entry.Images = append(entry.Images, img.Node)
		}
		for _, v := range n.Variants.Edges {
			entry.Variants = append(entry.Variants, v.Node)
		}
		entries = append(entries, entry)
	}

	log.Printf("[Gateway] Fetched %d products (country=%q)", len(entries), country)
	return entries, nil
}

// AccountInput is the data needed to register a customer
type AccountInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Phone            string
	AcceptsMarketing bool
}

// Customer is a registered customer profile
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CustomerData is a logged-in customer profile with its access token
type CustomerData struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	AccessToken string
	ExpiresAt   time.Time
}

// CreateCustomerAccount registers a customer. The first backend user error is
// returned as a *BackendValidationError matching ErrAccountCreation.
func (s *Storefront) CreateCustomerAccount(ctx context.Context, in AccountInput) (Customer, error) {
	input := map[string]any{
		"email":            in.Email,
		"password":         in.Password,
		"firstName":        in.FirstName,
		"lastName":         in.LastName,
		"acceptsMarketing": in.AcceptsMarketing,
	}
	if in.Phone != "" {
		input["phone"] = in.Phone
	}

	var data struct {
		CustomerCreate struct {
			Customer           *Customer   `json:"customer"`
			CustomerUserErrors []userError `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	const op = "customerCreate"
	if err := s.query(ctx, op, customerCreateMutation, map[string]any{"input": input}, &data); err != nil {
		return Customer{}, err
	}

	if errs := data.CustomerCreate.CustomerUserErrors; len(errs) > 0 {
		log.Printf("[Gateway] Account creation rejected: %s", errs[0].Code)
		return Customer{}, errs[0].toError(op, ErrAccountCreation, "Failed to create account")
	}
	if data.CustomerCreate.Customer == nil {
		return Customer{}, &BackendValidationError{Op: op, Message: "Failed to create account", Kind: ErrAccountCreation}
	}

	return *data.CustomerCreate.Customer, nil
}

// CustomerLogin exchanges credentials for an access token and then loads the
// profile with it. Backend user errors match ErrInvalidCredentials.
func (s *Storefront) CustomerLogin(ctx context.Context, email, password string) (CustomerData, error) {
	var tokenData struct {
		CustomerAccessTokenCreate struct {
			CustomerAccessToken *struct {
				AccessToken string    `json:"accessToken"`
				ExpiresAt   time.Time `json:"expiresAt"`
			} `json:"customerAccessToken"`
			CustomerUserErrors []userError `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	const op = "customerAccessTokenCreate"
	vars := map[string]any{"input": map[string]any{"email": email, "password": password}}
	if err := s.query(ctx, op, accessTokenMutation, vars, &tokenData); err != nil {
		return CustomerData{}, err
	}

	result := tokenData.CustomerAccessTokenCreate
	if len(result.CustomerUserErrors) > 0 {
		return CustomerData{}, result.CustomerUserErrors[0].toError(op, ErrInvalidCredentials, "Invalid email or password")
	}
	if result.CustomerAccessToken == nil || result.CustomerAccessToken.AccessToken == "" {
		return CustomerData{}, &BackendValidationError{Op: op, Message: "Invalid email or password", Kind: ErrInvalidCredentials}
	}

	profile, err := s.customer(ctx, result.CustomerAccessToken.AccessToken)
	if err != nil {
		return CustomerData{}, err
	}

	return CustomerData{
		ID:          profile.ID,
		Email:       profile.Email,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		DisplayName: profile.DisplayName,
		AccessToken: result.CustomerAccessToken.AccessToken,
		ExpiresAt:   result.CustomerAccessToken.ExpiresAt,
	}, nil
}

type customerProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
}

func (s *Storefront) customer(ctx context.Context, accessToken string) (customerProfile, error) {
	var data struct {
		Customer *customerProfile `json:"customer"`
	}
	const op = "customer"
	if err := s.query(ctx, op, customerQuery, map[string]any{"customerAccessToken": accessToken}, &data); err != nil {
		return customerProfile{}, err
	}
	if data.Customer == nil {
		return customerProfile{}, &TransportError{Op: op, Message: "no customer for access token", Kind: ErrQuery}
	}
	return *data.Customer, nil
}

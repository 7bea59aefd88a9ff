package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/pricing"
)

var ErrMissingVariant = errors.New("product has no purchasable variant")

// CartPermalink builds the hosted-cart URL
// https://<domain>/cart/<variantId>:<qty>[,<variantId>:<qty>...] for items in r.
// Every item must resolve to a variant id.
func CartPermalink(domain string, items []cart.LineItem, r region.Region) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		variant := pricing.ResolveVariantID(item.Product, r)
		if variant == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingVariant, item.Product.ID)
		}
		parts = append(parts, fmt.Sprintf("%s:%d", variant, item.Quantity))
	}

	domain = strings.TrimSuffix(strings.TrimPrefix(domain, "https://"), "/")
	return fmt.Sprintf("https://%s/cart/%s", domain, strings.Join(parts, ",")), nil
}

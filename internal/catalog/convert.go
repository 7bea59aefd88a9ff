package catalog

import (
	"fmt"
	"strings"

	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/shopspring/decimal"
)

const (
	notesLength        = 100
	defaultNotes       = "Premium fragrance"
	defaultDescription = "No description available"
)

// DefaultPrice is the base price of an entry that has no variants
var DefaultPrice = decimal.NewFromInt(125)

// variantID returns the numeric tail of a variant gid, the form used in cart permalinks
func variantID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		return gid[i+1:]
	}
	return gid
}

func notes(description string) string {
	if description == "" {
		return defaultNotes
	}
	runes := []rune(description)
	if len(runes) <= notesLength {
		return description
	}
	return string(runes[:notesLength]) + "..."
}

func handle(e gateway.CatalogEntry, index int) string {
	if e.Handle != "" {
		return e.Handle
	}
	return fmt.Sprintf("product-%d", index)
}

// toProduct builds the shared fields of a product. The base price and
// variant are left unset; only the default market supplies them.
func toProduct(e gateway.CatalogEntry, id string, ordinal int) product.Product {
	p := product.Product{
		ID:          id,
		Number:      fmt.Sprintf("%02d", ordinal),
		Name:        e.Title,
		Notes:       notes(e.Description),
		Description: e.Description,
		BottleText:  product.BottleText,
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if len(e.Images) > 0 {
		p.ImageURL = e.Images[0].URL
	}
	return p
}

// withBase sets the base price and variant from a default-market entry
func withBase(p product.Product, e gateway.CatalogEntry) product.Product {
	p.Price = DefaultPrice
	p.VariantID = ""
	if len(e.Variants) > 0 {
		v := e.Variants[0]
		p.Price = v.Price.Amount
		p.VariantID = variantID(v.ID)
	}
	return p
}

func toOffer(e gateway.CatalogEntry) (product.Offer, bool) {
	if len(e.Variants) == 0 {
		return product.Offer{}, false
	}
	v := e.Variants[0]
	return product.Offer{
		Price:        v.Price.Amount,
		VariantID:    variantID(v.ID),
		CurrencyCode: v.Price.CurrencyCode,
		Available:    v.AvailableForSale,
	}, true
}

// mergeOrder puts region.Default first, keeping the relative order of the rest
func mergeOrder(regions []region.Region, results [][]gateway.CatalogEntry) ([]region.Region, [][]gateway.CatalogEntry) {
	n := min(len(regions), len(results))
	rs := make([]region.Region, 0, n)
	es := make([][]gateway.CatalogEntry, 0, n)
	for i := 0; i < n; i++ {
		if regions[i] == region.Default {
			rs = append(rs, regions[i])
			es = append(es, results[i])
		}
	}
	for i := 0; i < n; i++ {
		if regions[i] != region.Default {
			rs = append(rs, regions[i])
			es = append(es, results[i])
		}
	}
	return rs, es
}

// Merge combines per-region fetch results into one catalog keyed by handle.
// results[i] belongs to regions[i]. The default market is merged first: it
// fixes the shared fields, base price and base variant of every handle it
// lists. A handle only other markets carry takes its shared fields from the
// first of them and has a zero base price, so it renders as a placeholder
// outside those markets. Every region contributes its own offer.
func Merge(regions []region.Region, results [][]gateway.CatalogEntry) []product.Product {
	regions, results = mergeOrder(regions, results)

	var order []string
	byID := make(map[string]product.Product)

	for i, r := range regions {
		for j, e := range results[i] {
			id := handle(e, j)
			p, ok := byID[id]
			if !ok {
				p = toProduct(e, id, len(order)+1)
				order = append(order, id)
			}
			if r == region.Default {
				p = withBase(p, e)
			}
			if o, ok := toOffer(e); ok {
				p = p.WithOffer(r, o)
			}
			byID[id] = p
		}
	}

	products := make([]product.Product, 0, len(order))
	for _, id := range order {
		products = append(products, byID[id])
	}
	return products
}

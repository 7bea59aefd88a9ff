package product

import (
	"maps"

	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/shopspring/decimal"
)

// BottleText is the placeholder token printed on packaging art
const BottleText = "Sugraé"

// Offer is the region-specific price and purchasable variant of a product
type Offer struct {
	Price        decimal.Decimal `json:"price"`
	VariantID    string          `json:"variant_id,omitempty"`
	CurrencyCode string          `json:"currency_code,omitempty"`
	Available    bool            `json:"available"`
}

// Product is a catalog entry. Products are values: stores hand out copies and
// replace them wholesale instead of mutating them.
type Product struct {
	ID          string                  `json:"id"`
	Number      string                  `json:"number"`
	Name        string                  `json:"name"`
	Notes       string                  `json:"notes"`
	Description string                  `json:"description"`
	BottleText  string                  `json:"bottle_text"`
	ImageURL    string                  `json:"image_url,omitempty"`
	Price       decimal.Decimal         `json:"price"`
	VariantID   string                  `json:"variant_id,omitempty"`
	Offers      map[region.Region]Offer `json:"offers,omitempty"`
}

// Offer returns the override for r, if any
func (p Product) Offer(r region.Region) (Offer, bool) {
	o, ok := p.Offers[r]
	return o, ok
}

// WithOffer returns a copy of p carrying o for r
func (p Product) WithOffer(r region.Region, o Offer) Product {
	out := p.Clone()
	if out.Offers == nil {
		out.Offers = make(map[region.Region]Offer)
	}
	out.Offers[r] = o
	return out
}

// Clone returns a deep copy of p
func (p Product) Clone() Product {
	out := p
	if p.Offers != nil {
		out.Offers = maps.Clone(p.Offers)
	}
	return out
}

// Fallback returns the built-in catalog shown when live data is unavailable
func Fallback() []Product {
	return []Product{
		{
			ID:          "alpha",
			Number:      "01",
			Name:        "ALPHA",
			Notes:       "Bergamot • White Tea • Soft Musk",
			Description: "Inspired by morning's first light touching a newborn's cheek. A gentle awakening that celebrates new beginnings with the softest touch.",
			BottleText:  BottleText,
			Price:       decimal.NewFromInt(125),
		},
		{
			ID:          "first-love",
			Number:      "02",
			Name:        "First Love",
			Notes:       "Honey • Vanilla • Sandalwood",
			Description: "The warmth of an embrace, the strength of love. Created for the woman who carries life while maintaining her golden radiance.",
			BottleText:  BottleText,
			Price:       decimal.NewFromInt(135),
		},
		{
			ID:          "aura",
			Number:      "03",
			Name:        "AURA",
			Notes:       "Rose Petals • Peach • White Cedar",
			Description: "Proof that gentleness is the ultimate luxury. A sophisticated whisper that speaks volumes without overwhelming.",
			BottleText:  BottleText,
			Price:       decimal.NewFromInt(145),
		},
	}
}

package api

import (
	"github.com/example/sugrae-storefront/internal/catalog"
	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// ProductResponse is a product priced for the visitor's region
type ProductResponse struct {
	product.Product
	DisplayPrice   decimal.Decimal `json:"display_price"`
	FormattedPrice string          `json:"formatted_price"`
	RegionVariant  string          `json:"region_variant_id,omitempty"`
	Placeholder    bool            `json:"placeholder_price"`
}

func toProductResponse(p product.Product, r region.Region) ProductResponse {
	q := pricing.Resolve(p, r)
	return ProductResponse{
		Product:        p,
		DisplayPrice:   q.Price,
		FormattedPrice: pricing.FormatFor(q.Price, r),
		RegionVariant:  q.VariantID,
		Placeholder:    pricing.IsPlaceholder(q.Price),
	}
}

// CatalogResponse lists the catalog with its load state
type CatalogResponse struct {
	State    catalog.State     `json:"state"`
	Live     bool              `json:"live"`
	Error    string            `json:"error,omitempty"`
	Region   region.Region     `json:"region"`
	Products []ProductResponse `json:"products"`
}

func toCatalogResponse(snap catalog.Snapshot, r region.Region) CatalogResponse {
	resp := CatalogResponse{
		State:    snap.State,
		Live:     snap.Live,
		Error:    snap.Error,
		Region:   r,
		Products: make([]ProductResponse, 0, len(snap.Products)),
	}
	for _, p := range snap.Products {
		resp.Products = append(resp.Products, toProductResponse(p, r))
	}
	return resp
}

// LineResponse is one cart line priced for the visitor's region
type LineResponse struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	ImageURL      string          `json:"image_url,omitempty"`
	Attribute     cart.Attribute  `json:"attribute,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	FormattedLine string          `json:"formatted_line_total"`
}

// CartResponse is the cart with totals for the visitor's region
type CartResponse struct {
	Items          []LineResponse  `json:"items"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	Currency       string          `json:"currency"`
	IsOpen         bool            `json:"is_open"`
	CheckoutOpen   bool            `json:"checkout_open"`
}

func toCartResponse(snap cart.Snapshot, r region.Region) CartResponse {
	resp := CartResponse{
		Items:        make([]LineResponse, 0, len(snap.Items)),
		ItemCount:    snap.ItemCount,
		Total:        cart.TotalOf(snap.Items, r),
		Currency:     r.Market().Currency,
		IsOpen:       snap.IsOpen,
		CheckoutOpen: snap.CheckoutOpen,
	}
	resp.FormattedTotal = pricing.FormatFor(resp.Total, r)

	for _, item := range snap.Items {
		unit := pricing.ResolvePrice(item.Product, r)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resp.Items = append(resp.Items, LineResponse{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			ImageURL:      item.Product.ImageURL,
			Attribute:     item.Attribute,
			Quantity:      item.Quantity,
			UnitPrice:     unit,
			LineTotal:     line,
			FormattedLine: pricing.FormatFor(line, r),
		})
	}
	return resp
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Attribute string `json:"attribute,omitempty"`
}

type updateItemRequest struct {
	Quantity  *int    `json:"quantity,omitempty"`
	Attribute *string `json:"attribute,omitempty"`
}

type regionRequest struct {
	Region string `json:"region"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type signupRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone,omitempty"`
	AcceptsMarketing bool   `json:"accepts_marketing"`
}

type newsletterRequest struct {
	Email string `json:"email"`
}

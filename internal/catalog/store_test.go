package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/sugrae-storefront/internal/catalog/mocks"
	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(handle, title string, price int64, currency, variant string) gateway.CatalogEntry {
	return gateway.CatalogEntry{
		ID:          "gid://shopify/Product/" + handle,
		Title:       title,
		Description: title + " eau de parfum",
		Handle:      handle,
		Images:      []gateway.Image{{URL: "https://cdn.example/" + handle + ".png"}},
		Variants: []gateway.Variant{{
			ID:               "gid://shopify/ProductVariant/" + variant,
			Price:            gateway.Money{Amount: decimal.NewFromInt(price), CurrencyCode: currency},
			AvailableForSale: true,
		}},
	}
}

func threeMarkets(f *mocks.MockFetcher) {
	f.Set("IN", []gateway.CatalogEntry{
		entry("alpha", "ALPHA", 9500, "INR", "101"),
		entry("first-love", "First Love", 9900, "INR", "102"),
		entry("aura", "AURA", 10500, "INR", "103"),
	})
	f.Set("AE", []gateway.CatalogEntry{
		entry("aura", "AURA (AE)", 540, "AED", "203"),
		entry("alpha", "ALPHA (AE)", 460, "AED", "201"),
		entry("first-love", "First Love (AE)", 495, "AED", "202"),
	})
	f.Set("US", []gateway.CatalogEntry{
		entry("alpha", "ALPHA (US)", 125, "USD", "301"),
		entry("first-love", "First Love (US)", 135, "USD", "302"),
		entry("aura", "AURA (US)", 145, "USD", "303"),
	})
}

// ============================================
// Initial State Tests
// ============================================

func TestNewStore_StartsWithFallback(t *testing.T) {
	s := NewStore(mocks.NewMockFetcher())

	snap := s.Snapshot()
	assert.Equal(t, StateUninitialized, snap.State)
	assert.False(t, snap.Live)
	assert.Len(t, snap.Products, len(product.Fallback()))
}

// ============================================
// Load / Merge Tests
// ============================================

func TestLoad_MergesMarketsByHandle(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)

	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 3, f.CallCount())
	for _, c := range f.Calls {
		assert.Equal(t, DefaultPageSize, c.First)
	}

	products := s.Products()
	require.Len(t, products, 3)
	assert.Equal(t, []string{"alpha", "first-love", "aura"}, []string{products[0].ID, products[1].ID, products[2].ID})

	alpha := products[0]
	assert.Equal(t, "ALPHA (US)", alpha.Name, "default market fixes shared fields")
	assert.Equal(t, "01", alpha.Number)
	assert.True(t, decimal.NewFromInt(125).Equal(alpha.Price))
	assert.Equal(t, "301", alpha.VariantID)
	assert.Equal(t, "https://cdn.example/alpha.png", alpha.ImageURL)

	require.Len(t, alpha.Offers, 3)
	ae, ok := alpha.Offer(region.UAE)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(460).Equal(ae.Price))
	assert.Equal(t, "201", ae.VariantID)
	assert.Equal(t, "AED", ae.CurrencyCode)

	us, ok := alpha.Offer(region.Global)
	require.True(t, ok)
	assert.Equal(t, "301", us.VariantID)

	assert.True(t, s.Snapshot().Live)
}

func TestLoad_BasePriceComesFromDefaultMarket(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	f.Set("US", []gateway.CatalogEntry{
		entry("alpha", "ALPHA (US)", 125, "USD", "301"),
		entry("first-love", "First Love (US)", 135, "USD", "302"),
	})
	s := NewStore(f)

	require.NoError(t, s.Load(context.Background()))

	products := s.Products()
	require.Len(t, products, 3)
	assert.Equal(t, []string{"alpha", "first-love", "aura"}, []string{products[0].ID, products[1].ID, products[2].ID})

	aura := products[2]
	assert.Equal(t, "AURA", aura.Name)
	assert.True(t, aura.Price.IsZero(), "no base price outside the default market")
	assert.Empty(t, aura.VariantID)
	_, inGlobal := aura.Offer(region.Global)
	assert.False(t, inGlobal)
	in, ok := aura.Offer(region.India)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10500).Equal(in.Price))

	alpha := products[0]
	assert.True(t, decimal.NewFromInt(125).Equal(alpha.Price))
	assert.Equal(t, "301", alpha.VariantID)
}

func TestMerge_DefaultMarketWinsRegardlessOfOrder(t *testing.T) {
	results := [][]gateway.CatalogEntry{
		{entry("alpha", "ALPHA (IN)", 9500, "INR", "101")},
		{entry("alpha", "ALPHA (US)", 125, "USD", "301")},
	}

	products := Merge([]region.Region{region.India, region.Global}, results)

	require.Len(t, products, 1)
	assert.Equal(t, "ALPHA (US)", products[0].Name)
	assert.True(t, decimal.NewFromInt(125).Equal(products[0].Price))
	assert.Equal(t, "301", products[0].VariantID)
	assert.Len(t, products[0].Offers, 2)
}

func TestLoad_IndiaAndUAEShareHandles(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	f.Set("US", nil)
	s := NewStore(f)

	require.NoError(t, s.Load(context.Background()))

	products := s.Products()
	require.Len(t, products, 3)
	for _, p := range products {
		_, inIndia := p.Offer(region.India)
		_, inUAE := p.Offer(region.UAE)
		_, inGlobal := p.Offer(region.Global)
		assert.True(t, inIndia, p.ID)
		assert.True(t, inUAE, p.ID)
		assert.False(t, inGlobal, p.ID)
	}
}

func TestLoad_ZeroEdgesDegradesWithFallback(t *testing.T) {
	s := NewStore(mocks.NewMockFetcher())

	err := s.Load(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCatalog)
	snap := s.Snapshot()
	assert.Equal(t, StateDegraded, snap.State)
	assert.Len(t, snap.Products, 3)
	assert.Equal(t, "alpha", snap.Products[0].ID)
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.Live)
}

func TestLoad_NilFetcherDegrades(t *testing.T) {
	s := NewStore(nil)

	assert.ErrorIs(t, s.Load(context.Background()), ErrNoBackend)
	assert.Equal(t, StateDegraded, s.State())
	assert.Len(t, s.Products(), 3)
}

func TestRefresh_FailureKeepsPreviousCatalog(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)
	require.NoError(t, s.Load(context.Background()))

	upstream := &gateway.TransportError{Op: "fetchProducts", StatusCode: 503, Kind: gateway.ErrQuery}
	f.Fail("AE", upstream)
	err := s.Refresh(context.Background())

	require.Error(t, err)
	var te *gateway.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, StateDegraded, s.State())
	assert.Equal(t, err, s.Err())

	products := s.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "301", products[0].VariantID, "live catalog survives a failed refresh")
	assert.True(t, s.Snapshot().Live)
}

func TestRefresh_SuccessReplacesWholesale(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)
	require.NoError(t, s.Load(context.Background()))

	f.Set("IN", []gateway.CatalogEntry{entry("nocturne", "Nocturne", 12000, "INR", "401")})
	f.Set("AE", nil)
	f.Set("US", nil)
	require.NoError(t, s.Refresh(context.Background()))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "nocturne", products[0].ID)
	assert.Nil(t, s.Err())
}

func TestLoad_ContextCanceled(t *testing.T) {
	f := mocks.NewMockFetcher()
	f.Fail("IN", context.Canceled)
	s := NewStore(f)

	err := s.Load(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDegraded, s.State())
}

func TestRun_RefreshesUntilCanceled(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.CallCount() >= 6 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.True(t, s.Snapshot().Live)
}

// ============================================
// Lookup Tests
// ============================================

func TestProduct_NotFound(t *testing.T) {
	s := NewStore(nil)

	p, err := s.Product("aura")
	require.NoError(t, err)
	assert.Equal(t, "AURA", p.Name)

	_, err = s.Product("missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestProducts_ReturnsCopies(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)
	require.NoError(t, s.Load(context.Background()))

	products := s.Products()
	products[0].Name = "changed"
	delete(products[0].Offers, region.India)

	again := s.Products()
	assert.Equal(t, "ALPHA (US)", again[0].Name)
	assert.Len(t, again[0].Offers, 3)
}

func TestSubscribe_SeesLoadingThenResult(t *testing.T) {
	f := mocks.NewMockFetcher()
	threeMarkets(f)
	s := NewStore(f)

	var states []State
	dispose := s.Subscribe(func(snap Snapshot) { states = append(states, snap.State) })
	defer dispose()

	require.NoError(t, s.Load(context.Background()))
	f.Fail("US", errors.New("boom"))
	require.Error(t, s.Refresh(context.Background()))

	assert.Equal(t, []State{StateLoading, StateReady, StateLoading, StateDegraded}, states)
}

// ============================================
// Conversion Tests
// ============================================

func TestMerge_Conversion(t *testing.T) {
	long := strings.Repeat("é", 120)
	results := [][]gateway.CatalogEntry{{
		{Title: "No Handle", Description: ""},
		{Title: "Long", Handle: "long", Description: long},
		{Title: "Short", Handle: "short", Description: "Soft musk."},
	}}

	products := Merge([]region.Region{region.Default}, results)

	require.Len(t, products, 3)

	assert.Equal(t, "product-0", products[0].ID)
	assert.Equal(t, "Premium fragrance", products[0].Notes)
	assert.Equal(t, "No description available", products[0].Description)
	assert.True(t, DefaultPrice.Equal(products[0].Price))
	assert.Empty(t, products[0].Offers)

	assert.Equal(t, strings.Repeat("é", 100)+"...", products[1].Notes)
	assert.Equal(t, "Soft musk.", products[2].Notes)
	assert.Equal(t, "03", products[2].Number)
	assert.Equal(t, product.BottleText, products[2].BottleText)
}

func TestVariantID(t *testing.T) {
	assert.Equal(t, "51885552927020", variantID("gid://shopify/ProductVariant/51885552927020"))
	assert.Equal(t, "plain", variantID("plain"))
}

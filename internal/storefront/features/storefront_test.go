package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/catalog"
	catalogmocks "github.com/example/sugrae-storefront/internal/catalog/mocks"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/gateway"
	identitymocks "github.com/example/sugrae-storefront/internal/identity/mocks"
	"github.com/example/sugrae-storefront/internal/infrastructure/store"
	"github.com/example/sugrae-storefront/internal/pricing"
	"github.com/example/sugrae-storefront/internal/storefront"
	"github.com/shopspring/decimal"
)

type countingDetector struct {
	calls atomic.Int32
}

func (d *countingDetector) CountryCode(ctx context.Context, ip string) (string, error) {
	d.calls.Add(1)
	return "US", nil
}

// newsletterList accepts each address once and answers 409 afterwards
type newsletterList struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (l *newsletterList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			Attributes struct {
				Email string `json:"email"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	email := body.Data.Attributes.Email
	if l.seen[email] {
		w.WriteHeader(http.StatusConflict)
		return
	}
	l.seen[email] = true
	w.WriteHeader(http.StatusAccepted)
}

type storefrontTestContext struct {
	visitor  string
	kv       store.KV
	fetcher  *catalogmocks.MockFetcher
	gw       *identitymocks.MockGateway
	detector *countingDetector
	list     *httptest.Server
	deps     storefront.Deps
	session  *storefront.Session

	err     error
	outcome gateway.SubscribeOutcome
}

func (c *storefrontTestContext) reset() {
	if c.session != nil {
		c.session.Close()
	}
	if c.list != nil {
		c.list.Close()
	}
	*c = storefrontTestContext{}
}

func (c *storefrontTestContext) aStorefrontForVisitor(id string) error {
	codec, err := auth.NewSessionCodec("features-secret-0123456789abcdef", time.Hour)
	if err != nil {
		return err
	}

	c.visitor = id
	c.kv = store.NewMemoryKV()
	c.fetcher = catalogmocks.NewMockFetcher()
	c.gw = identitymocks.NewMockGateway()
	c.detector = &countingDetector{}
	c.list = httptest.NewServer(&newsletterList{seen: make(map[string]bool)})

	newsletter, err := gateway.NewNewsletter(gateway.NewsletterConfig{Endpoint: c.list.URL, ListID: "LIST"})
	if err != nil {
		return err
	}

	c.deps = storefront.Deps{
		Catalog:    catalog.NewStore(c.fetcher),
		Gateway:    c.gw,
		KV:         c.kv,
		Codec:      codec,
		Detector:   c.detector,
		Newsletter: newsletter,
	}
	return c.open()
}

func (c *storefrontTestContext) open() error {
	s, err := storefront.NewSession(context.Background(), c.visitor, "203.0.113.7", c.deps)
	if err != nil {
		return err
	}
	c.session = s
	return nil
}

func marketFor(name string) (region.Region, error) {
	return region.Parse(name)
}

func catalogEntry(handle string, price int, currency string) gateway.CatalogEntry {
	return gateway.CatalogEntry{
		ID:       "gid://shopify/Product/" + handle,
		Title:    strings.ToUpper(handle),
		Handle:   handle,
		Variants: []gateway.Variant{{ID: "gid://shopify/ProductVariant/" + handle, Price: gateway.Money{Amount: decimal.NewFromInt(int64(price)), CurrencyCode: currency}}},
	}
}

func (c *storefrontTestContext) theMarketLists(name, h1 string, p1 int, h2 string, p2 int, h3 string, p3 int) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	m := r.Market()
	c.fetcher.Set(m.CountryCode, []gateway.CatalogEntry{
		catalogEntry(h1, p1, m.Currency),
		catalogEntry(h2, p2, m.Currency),
		catalogEntry(h3, p3, m.Currency),
	})
	return nil
}

func (c *storefrontTestContext) theMarketListsTwo(name, h1 string, p1 int, h2 string, p2 int) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	m := r.Market()
	c.fetcher.Set(m.CountryCode, []gateway.CatalogEntry{
		catalogEntry(h1, p1, m.Currency),
		catalogEntry(h2, p2, m.Currency),
	})
	return nil
}

func (c *storefrontTestContext) theMarketListsNothing(name string) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	c.fetcher.Set(r.Market().CountryCode, nil)
	return nil
}

func (c *storefrontTestContext) theCatalogLoads() error {
	c.err = c.deps.Catalog.Load(context.Background())
	return nil
}

func (c *storefrontTestContext) theCatalogIsWithProducts(state string, n int) error {
	snap := c.deps.Catalog.Snapshot()
	if string(snap.State) != state {
		return fmt.Errorf("expected catalog state %q, got %q (error %v)", state, snap.State, c.err)
	}
	if len(snap.Products) != n {
		return fmt.Errorf("expected %d products, got %d", n, len(snap.Products))
	}
	return nil
}

func (c *storefrontTestContext) productCostsIn(id string, price int, name string) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	p, err := c.deps.Catalog.Product(id)
	if err != nil {
		return err
	}
	got := pricing.ResolvePrice(p, r)
	if !got.Equal(decimal.NewFromInt(int64(price))) {
		return fmt.Errorf("expected %s to cost %d in %s, got %s", id, price, name, got)
	}
	return nil
}

func (c *storefrontTestContext) theVisitorIsInRegion(name string) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	if got := c.session.Region.Region(); got != r {
		return fmt.Errorf("expected region %s, got %s", r, got)
	}
	return nil
}

func (c *storefrontTestContext) theVisitorAddsToTheCartTimes(id string, times int) error {
	for range times {
		if err := c.session.AddToCart(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *storefrontTestContext) theVisitorSetsTheQuantityOfTo(id string, quantity int) error {
	return c.session.Cart.UpdateQuantity(id, quantity)
}

func (c *storefrontTestContext) theCartTotalIs(total int) error {
	if got := c.session.Total(); !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *storefrontTestContext) theCartHoldsItems(n int) error {
	if got := c.session.Cart.ItemCount(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) theBackendRejectsLoginsWith(message string) error {
	c.gw.LoginErr = &gateway.BackendValidationError{
		Op:      "customerAccessTokenCreate",
		Message: message,
		Kind:    gateway.ErrInvalidCredentials,
	}
	return nil
}

func (c *storefrontTestContext) theVisitorLogsInAsWith(email, password string) error {
	_, c.err = c.session.Identity.Login(context.Background(), email, password, false)
	return nil
}

func (c *storefrontTestContext) theLoginFailsWithMessage(message string) error {
	if c.err == nil {
		return errors.New("expected login to fail")
	}
	if !errors.Is(c.err, gateway.ErrInvalidCredentials) {
		return fmt.Errorf("expected invalid credentials, got %v", c.err)
	}
	if c.err.Error() != message {
		return fmt.Errorf("expected message %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *storefrontTestContext) theVisitorIsSignedOut() error {
	if c.session.Identity.IsAuthenticated() {
		return errors.New("expected visitor to be signed out")
	}
	return nil
}

func (c *storefrontTestContext) theVisitorChoosesRegion(name string) error {
	r, err := marketFor(name)
	if err != nil {
		return err
	}
	return c.session.Region.SetRegion(context.Background(), r)
}

func (c *storefrontTestContext) theVisitorReloadsTheStorefront() error {
	c.session.Close()
	c.detector.calls.Store(0)
	return c.open()
}

func (c *storefrontTestContext) theRegionIs(name string) error {
	return c.theVisitorIsInRegion(name)
}

func (c *storefrontTestContext) geolocationWasNotConsultedAfterTheReload() error {
	if n := c.detector.calls.Load(); n != 0 {
		return fmt.Errorf("expected no geolocation calls, got %d", n)
	}
	return nil
}

func (c *storefrontTestContext) theVisitorSubscribesToTheNewsletter(email string) error {
	c.outcome, c.err = c.session.SubscribeNewsletter(context.Background(), email)
	return c.err
}

func (c *storefrontTestContext) theSubscriptionOutcomeIs(outcome string) error {
	if string(c.outcome) != outcome {
		return fmt.Errorf("expected outcome %q, got %q", outcome, c.outcome)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a storefront for visitor "([^"]*)"$`, tc.aStorefrontForVisitor)
	ctx.Step(`^the "([^"]*)" market lists "([^"]*)" at (\d+), "([^"]*)" at (\d+) and "([^"]*)" at (\d+)$`, tc.theMarketLists)
	ctx.Step(`^the "([^"]*)" market lists "([^"]*)" at (\d+) and "([^"]*)" at (\d+)$`, tc.theMarketListsTwo)
	ctx.Step(`^the "([^"]*)" market lists nothing$`, tc.theMarketListsNothing)
	ctx.Step(`^the visitor is in region "([^"]*)"$`, tc.theVisitorIsInRegion)
	ctx.Step(`^the backend rejects logins with "([^"]*)"$`, tc.theBackendRejectsLoginsWith)

	// When steps
	ctx.Step(`^the catalog loads$`, tc.theCatalogLoads)
	ctx.Step(`^the visitor adds "([^"]*)" to the cart (\d+) times?$`, tc.theVisitorAddsToTheCartTimes)
	ctx.Step(`^the visitor sets the quantity of "([^"]*)" to (-?\d+)$`, tc.theVisitorSetsTheQuantityOfTo)
	ctx.Step(`^the visitor logs in as "([^"]*)" with "([^"]*)"$`, tc.theVisitorLogsInAsWith)
	ctx.Step(`^the visitor chooses region "([^"]*)"$`, tc.theVisitorChoosesRegion)
	ctx.Step(`^the visitor reloads the storefront$`, tc.theVisitorReloadsTheStorefront)
	ctx.Step(`^the visitor subscribes "([^"]*)" to the newsletter$`, tc.theVisitorSubscribesToTheNewsletter)

	// Then steps
	ctx.Step(`^the catalog is "([^"]*)" with (\d+) products$`, tc.theCatalogIsWithProducts)
	ctx.Step(`^product "([^"]*)" costs (\d+) in "([^"]*)"$`, tc.productCostsIn)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart holds (\d+) items$`, tc.theCartHoldsItems)
	ctx.Step(`^the login fails with message "([^"]*)"$`, tc.theLoginFailsWithMessage)
	ctx.Step(`^the visitor is signed out$`, tc.theVisitorIsSignedOut)
	ctx.Step(`^the region is "([^"]*)"$`, tc.theRegionIs)
	ctx.Step(`^geolocation was not consulted after the reload$`, tc.geolocationWasNotConsultedAfterTheReload)
	ctx.Step(`^the subscription outcome is "([^"]*)"$`, tc.theSubscriptionOutcomeIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"storefront.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// Package pricing resolves region-specific prices and variants and formats
// amounts for display.
package pricing

import (
	"strings"
	"sync"
	"unicode"

	"github.com/example/sugrae-storefront/internal/domain/product"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Quote is what a product costs in a region and which variant to check out
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	VariantID string          `json:"variant_id,omitempty"`
	Currency  string          `json:"currency"`
}

// ResolvePrice returns the region override price when it is positive, else the base price
func ResolvePrice(p product.Product, r region.Region) decimal.Decimal {
	if o, ok := p.Offer(r); ok && o.Price.IsPositive() {
		return o.Price
	}
	return p.Price
}

// ResolveVariantID returns the region override variant, else the base variant, else ""
func ResolveVariantID(p product.Product, r region.Region) string {
	if o, ok := p.Offer(r); ok && o.VariantID != "" {
		return o.VariantID
	}
	return p.VariantID
}

// Resolve returns the price and variant of p in r
func Resolve(p product.Product, r region.Region) Quote {
	return Quote{
		Price:     ResolvePrice(p, r),
		VariantID: ResolveVariantID(p, r),
		Currency:  r.Market().Currency,
	}
}

// IsPlaceholder reports whether amount should render as a loading state
func IsPlaceholder(amount decimal.Decimal) bool {
	return !amount.IsPositive()
}

// FormatPrice renders amount with the currency symbol prefixed and no space.
// Integral amounts get no decimals, others exactly two. Digits come from the
// decimal itself, so no precision is lost at any magnitude. Digit grouping
// and separators follow locale (a BCP 47 tag); an unparseable locale falls
// back to English.
func FormatPrice(amount decimal.Decimal, symbol, locale string) string {
	l := layoutFor(locale)

	abs := amount.Abs()
	var whole, frac string
	if abs.IsInteger() {
		whole = abs.String()
	} else {
		fixed := abs.StringFixed(2)
		i := strings.IndexByte(fixed, '.')
		whole, frac = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	b.WriteString(symbol)
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(l.groupDigits(whole))
	if frac != "" {
		b.WriteString(l.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// layout is how a locale writes numbers
type layout struct {
	group     string
	decimal   string
	primary   int
	secondary int
}

var layouts sync.Map

// layoutFor learns the separators and group sizes of locale from the printer's
// rendering of a known number
func layoutFor(locale string) layout {
	if l, ok := layouts.Load(locale); ok {
		return l.(layout)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	sample := message.NewPrinter(tag).Sprint(number.Decimal(1234567.5,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
	))

	l := parseLayout([]rune(sample))
	layouts.Store(locale, l)
	return l
}

// parseLayout reads a rendering of 1234567.5
func parseLayout(sample []rune) layout {
	l := layout{group: ",", decimal: "."}

	// the fraction digit is last, the decimal separator sits before it
	end := len(sample) - 1
	sepEnd := end
	for sepEnd > 0 && !unicode.IsDigit(sample[sepEnd-1]) {
		sepEnd--
	}
	if sepEnd < end {
		l.decimal = string(sample[sepEnd:end])
	}

	var runs []int
	run := 0
	for i := 0; i < sepEnd; i++ {
		if unicode.IsDigit(sample[i]) {
			run++
			continue
		}
		if run > 0 {
			runs = append(runs, run)
			if len(runs) == 1 {
				j := i
				for j < sepEnd && !unicode.IsDigit(sample[j]) {
					j++
				}
				l.group = string(sample[i:j])
			}
		}
		run = 0
	}
	runs = append(runs, run)

	if len(runs) > 1 {
		l.primary = runs[len(runs)-1]
		l.secondary = l.primary
		if len(runs) > 2 {
			l.secondary = runs[len(runs)-2]
		}
	}
	return l
}

// groupDigits inserts group separators into a run of ASCII digits
func (l layout) groupDigits(digits string) string {
	if l.primary <= 0 || len(digits) <= l.primary {
		return digits
	}

	head := digits[:len(digits)-l.primary]
	groups := []string{digits[len(digits)-l.primary:]}
	for len(head) > l.secondary {
		groups = append(groups, head[len(head)-l.secondary:])
		head = head[:len(head)-l.secondary]
	}
	groups = append(groups, head)

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		if i > 0 {
			b.WriteString(l.group)
		}
	}
	return b.String()
}

// FormatFor formats amount using the market configuration of r
func FormatFor(amount decimal.Decimal, r region.Region) string {
	m := r.Market()
	return FormatPrice(amount, m.CurrencySymbol, m.Locale)
}

// Package format renders amounts, dates and enum values for display.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Locale selects separators, templates and label language.
type Locale string

const (
	RU Locale = "ru-RU"
	EN Locale = "en-US"
)

// ParseLocale accepts "ru-RU" and "en-US" (and the bare language codes).
func ParseLocale(s string) (Locale, error) {
	switch s {
	case "", "ru", string(RU):
		return RU, nil
	case "en", string(EN):
		return EN, nil
	default:
		return RU, fmt.Errorf("format: unsupported locale %q", s)
	}
}

type numberStyle struct {
	decimal  string
	thousand string
	// currency template; "1" is the amount and "$" the currency symbol, as in go-money.
	template string
}

var styles = map[Locale]numberStyle{
	RU: {decimal: ",", thousand: "\u00a0", template: "1\u00a0$"},
	EN: {decimal: ".", thousand: ",", template: "$1"},
}

// Formatter formats values for one locale. The zero value formats ru-RU in
// the local time zone.
type Formatter struct {
	Locale   Locale
	Location *time.Location
}

// New returns a Formatter for locale.
func New(locale Locale) Formatter {
	return Formatter{Locale: locale}
}

func (f Formatter) style() numberStyle {
	if s, ok := styles[f.Locale]; ok {
		return s
	}
	return styles[RU]
}

func (f Formatter) loc() *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return time.Local
}

// Currency formats amount with exactly two fraction digits and the symbol of
// code. Codes unknown to go-money are shown as the code itself.
func (f Formatter) Currency(amount decimal.Decimal, code string) string {
	st := f.style()
	grapheme := code
	if c := money.GetCurrency(code); c != nil {
		grapheme = c.Grapheme
	}
	return st.format(amount, 2, grapheme, st.template)
}

// Number formats v with exactly decimals fraction digits and locale grouping.
func (f Formatter) Number(v decimal.Decimal, decimals int) string {
	return f.style().format(v, decimals, "", "1")
}

// maxMinor is the largest value, in minor units, go-money's int64 formatter
// can take.
var maxMinor = decimal.NewFromInt(math.MaxInt64)

// format renders v with decimals fraction digits into template. Values whose
// minor units overflow int64 are grouped from decimal's own representation.
func (st numberStyle) format(v decimal.Decimal, decimals int, grapheme, template string) string {
	minor := v.Round(int32(decimals)).Shift(int32(decimals))
	if minor.Abs().LessThanOrEqual(maxMinor) {
		mf := money.NewFormatter(decimals, st.decimal, st.thousand, grapheme, template)
		return mf.Format(minor.IntPart())
	}

	intPart, frac, _ := strings.Cut(v.Abs().StringFixed(int32(decimals)), ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(st.thousand)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(st.decimal)
		b.WriteString(frac)
	}
	out := strings.Replace(template, "1", b.String(), 1)
	out = strings.Replace(out, "$", grapheme, 1)
	if v.IsNegative() {
		out = "-" + out
	}
	return out
}

// Date formats t as a day-precision date, e.g. 05.09.2025.
func (f Formatter) Date(t time.Time) string {
	if f.Locale == EN {
		return t.In(f.loc()).Format("01/02/2006")
	}
	return t.In(f.loc()).Format("02.01.2006")
}

// DateTime formats t with minutes, e.g. 05.09.2025, 14:03.
func (f Formatter) DateTime(t time.Time) string {
	if f.Locale == EN {
		return t.In(f.loc()).Format("01/02/2006, 03:04 PM")
	}
	return t.In(f.loc()).Format("02.01.2006, 15:04")
}

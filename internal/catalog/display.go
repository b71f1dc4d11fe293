package catalog

import (
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DisplayCategory upper-cases the first letter of a category for labels.
// The stored category is never replaced by this value.
func DisplayCategory(c string) string {
	r, size := utf8.DecodeRuneInString(c)
	if r == utf8.RuneError {
		return c
	}
	return string(unicode.ToUpper(r)) + c[size:]
}

func FormatPrice(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}

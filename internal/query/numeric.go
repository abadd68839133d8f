package query

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRun matches the first contiguous digit run with an optional single
// decimal point, after thousands-separator commas are stripped. "$12,500"
// normalizes to 12500, "8,000.50 USD" to 8000.5.
var numericRun = regexp.MustCompile(`\d+(\.\d+)?`)

// NormalizeNumeric derives a comparable number from a loosely formatted
// display string. The second return reports whether any digits were found.
func NormalizeNumeric(s string) (float64, bool) {
	m := numericRun.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumericValue applies the absent-as-zero policy: strings with no digits
// ("Call for price") normalize to 0. The same function backs both range
// filtering and sorting so the two can never disagree.
func NumericValue(s string) float64 {
	v, _ := NormalizeNumeric(s)
	return v
}

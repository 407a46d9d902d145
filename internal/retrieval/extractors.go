package retrieval

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Catalog text fields are not normalized. The extractors below never fail:
// a missing value is reported as absent (false) or zero, never as an error.

var (
	budgetPattern  = regexp.MustCompile(`(under|below)\s*\$?\s*(\d+)`)
	pricePattern   = regexp.MustCompile(`(\d{3,5})`)
	batteryPattern = regexp.MustCompile(`(?i)(\d{4,6})\s*mAh`)
)

// ExtractBudget finds "under|below [$]N" in a question. The first match wins.
// Budgets too large for an int clamp to math.MaxInt.
func ExtractBudget(question string) (int, bool) {
	m := budgetPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractPriceNumber pulls the first 3-5 digit run out of a price such as "$1,299".
func ExtractPriceNumber(price *string) (int, bool) {
	if price == nil || *price == "" {
		return 0, false
	}
	m := pricePattern.FindStringSubmatch(strings.ReplaceAll(*price, ",", ""))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BatteryCapacity returns the mAh figure in a battery description, or 0.
func BatteryCapacity(battery *string) int {
	if battery == nil {
		return 0
	}
	m := batteryPattern.FindStringSubmatch(*battery)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

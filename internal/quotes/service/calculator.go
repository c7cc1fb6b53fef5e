package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var quantityRegex = regexp.MustCompile(`^([\d.,]+)`)

// Pricing holds the derived money fields of a form-based quote, in cents.
type Pricing struct {
	Quantity            float64
	UnitRateCents       int64
	SubtotalCents       int64
	TotalCents          int64
	ProfitMarginPercent float64
	FinalPriceCents     int64
}

// ParseQuantity extracts the leading number of a free-form quantity.
// Examples: "2" -> 2, "3,5 horas" -> 3.5, "1.250,5 m²" -> 1250.5.
// A dot is a thousands separator only when a decimal comma follows it;
// on its own it is a decimal point, so "1.250" -> 1.25.
// ok is false when the input does not start with a number.
func ParseQuantity(quantity string) (float64, bool) {
	matches := quantityRegex.FindStringSubmatch(strings.TrimSpace(quantity))
	if len(matches) < 2 {
		return 0, false
	}
	raw := strings.TrimRight(matches[1], ".,")
	if strings.Contains(raw, ",") {
		// Brazilian notation: dot groups thousands, comma marks decimals.
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		return 0, false
	}
	return val, true
}

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// ComputeBaseTotal returns quantity * unit rate in cents.
func ComputeBaseTotal(quantity float64, unitRateCents int64) int64 {
	return roundCents(quantity * float64(unitRateCents))
}

// ComputeFinalPrice applies the profit margin to a total:
// total * (1 + margin/100), rounded to the cent.
func ComputeFinalPrice(totalCents int64, marginPercent float64) int64 {
	return roundCents(float64(totalCents) * (1 + marginPercent/100))
}

// FitsCents reports whether pricing quantity at unitRateCents with the
// given margin keeps the base and final amounts within int64 cents.
func FitsCents(quantity float64, unitRateCents int64, marginPercent float64) bool {
	base := math.Round(quantity * float64(unitRateCents))
	final := math.Round(base * (1 + marginPercent/100))
	limit := float64(math.MaxInt64)
	return !math.IsNaN(final) && base >= 0 && base < limit && final >= 0 && final < limit
}

// Price derives every money field for a form-based quote. Without line items
// the subtotal and total both equal the base amount.
func Price(quantity float64, unitRateCents int64, marginPercent float64) Pricing {
	base := ComputeBaseTotal(quantity, unitRateCents)
	return Pricing{
		Quantity:            quantity,
		UnitRateCents:       unitRateCents,
		SubtotalCents:       base,
		TotalCents:          base,
		ProfitMarginPercent: marginPercent,
		FinalPriceCents:     ComputeFinalPrice(base, marginPercent),
	}
}

package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// maxPricingDepth bounds the walk over untrusted pricing payloads.
const maxPricingDepth = 16

// priceKeys are the keys whose values are collected as prices.
var priceKeys = map[string]struct{}{
	"price":  {},
	"avg":    {},
	"median": {},
	"low":    {},
	"high":   {},
	"mid":    {},
}

// ExtractPrice walks a pricing payload and returns the median of every
// strictly positive value found at a recognized key, at any depth.
// ok is false when nothing usable was found.
func ExtractPrice(pricing any) (price float64, ok bool) {
	var values []float64
	collectPrices(pricing, 0, &values)
	if len(values) == 0 {
		return 0, false
	}
	return Median(values), true
}

// ExtractCandidatePrice is ExtractPrice over a candidate's pricing payload.
func ExtractCandidatePrice(m *CandidateMatch) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return ExtractPrice(m.Pricing)
}

func collectPrices(v any, depth int, out *[]float64) {
	if depth > maxPricingDepth {
		return
	}

	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			if _, recognized := priceKeys[strings.ToLower(key)]; recognized {
				collectValue(child, out)
			}
			collectPrices(child, depth+1, out)
		}
	case []any:
		for _, child := range node {
			collectPrices(child, depth+1, out)
		}
	case []map[string]any:
		for _, child := range node {
			collectPrices(child, depth+1, out)
		}
	}
}

// collectValue accepts a scalar found at a recognized key, or the scalars of
// an array held directly by that key.
func collectValue(v any, out *[]float64) {
	if arr, isArr := v.([]any); isArr {
		for _, item := range arr {
			if f, ok := PositiveNumber(item); ok {
				*out = append(*out, f)
			}
		}
		return
	}
	if f, ok := PositiveNumber(v); ok {
		*out = append(*out, f)
	}
}

// PositiveNumber coerces numbers and numeric strings, keeping only finite values > 0.
func PositiveNumber(v any) (float64, bool) {
	f, ok := Number(v)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}

// Number coerces a decoded JSON scalar to a finite float64.
// Strings are stripped of every character except digits, '.' and a '-' that
// precedes the first digit, so "$1,299.00" parses as 1299 and "$-5" stays
// negative. A '-' after the first digit ends the number: "5-10" reads as 5.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := stripNonNumeric(n)
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-':
			if digits {
				return b.String()
			}
			if b.Len() == 0 {
				b.WriteRune(r)
			}
		}
	}
	if !digits {
		return ""
	}
	return b.String()
}

// Median returns the textbook median; the input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// NormalizeListings maps pricing.list entries to MarketListing, keeping the
// source order. Returns nil when the payload has no usable list.
func NormalizeListings(pricing any) []MarketListing {
	p, ok := pricing.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := p["list"].([]any)
	if !ok || len(list) == 0 {
		return nil
	}

	listings := make([]MarketListing, 0, len(list))
	for _, raw := range list {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		listing := MarketListing{
			ID:           firstText(item, "id", "item_id"),
			Link:         firstText(item, "item_link", "link", "url"),
			Name:         firstText(item, "name", "title"),
			Currency:     firstText(item, "currency"),
			CountryCode:  firstText(item, "country_code", "country"),
			Source:       firstText(item, "source"),
			CreatedAt:    firstText(item, "date_of_creation", "created", "created_at"),
			SoldAt:       firstText(item, "date_of_sale", "sold", "sold_at"),
			Grade:        firstText(item, "grade"),
			GradeCompany: firstText(item, "grade_company"),
		}
		if price, ok := PositiveNumber(item["price"]); ok {
			listing.Price = price
		}
		listings = append(listings, listing)
	}

	if len(listings) == 0 {
		return nil
	}
	return listings
}

// Text renders a decoded JSON scalar as a string. Integral numbers are
// printed without a fractional part ("1999", not "1999.000000").
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func firstText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := Text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

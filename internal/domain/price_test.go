package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		pricing  any
		expected float64
		ok       bool
	}{
		{
			name:     "odd count median",
			pricing:  map[string]any{"list": []any{map[string]any{"price": 10.0}, map[string]any{"price": 20.0}, map[string]any{"price": 30.0}}},
			expected: 20,
			ok:       true,
		},
		{
			name:     "even count median",
			pricing:  map[string]any{"list": []any{map[string]any{"price": 10.0}, map[string]any{"price": 20.0}}},
			expected: 15,
			ok:       true,
		},
		{
			name:     "top level summary keys",
			pricing:  map[string]any{"avg": 12.0, "low": 8.0, "high": 100.0},
			expected: 12,
			ok:       true,
		},
		{
			name: "nested objects and arrays",
			pricing: map[string]any{
				"sources": map[string]any{
					"tcgplayer": map[string]any{"mid": 5.0},
					"ebay":      []any{map[string]any{"median": 7.0}},
				},
			},
			expected: 6,
			ok:       true,
		},
		{
			name:     "numeric strings are coerced",
			pricing:  map[string]any{"list": []any{map[string]any{"price": "$1,200.00"}, map[string]any{"price": "USD 800"}}},
			expected: 1000,
			ok:       true,
		},
		{
			name:     "outlier resisted",
			pricing:  map[string]any{"list": []any{map[string]any{"price": 9.0}, map[string]any{"price": 10.0}, map[string]any{"price": 5000.0}}},
			expected: 10,
			ok:       true,
		},
		{
			name:     "json numbers and ints",
			pricing:  map[string]any{"avg": json.Number("4"), "median": 6},
			expected: 5,
			ok:       true,
		},
		{
			name:    "empty list",
			pricing: map[string]any{"list": []any{}},
		},
		{
			name:    "non positive only",
			pricing: map[string]any{"avg": 0.0, "low": -3.0, "list": []any{map[string]any{"price": nil}}},
		},
		{
			name:    "negative numeric string",
			pricing: map[string]any{"price": "-$12.50"},
		},
		{
			name:    "non numeric only",
			pricing: map[string]any{"avg": "n/a", "price": true, "currency": "USD"},
		},
		{
			name:    "unrecognized keys ignored",
			pricing: map[string]any{"total": 50.0, "count": 3.0},
		},
		{
			name:    "nil payload",
			pricing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPrice(tt.pricing)
			if ok != tt.ok {
				t.Fatalf("ExtractPrice() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("ExtractPrice() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtractPriceWithinRange(t *testing.T) {
	values := []float64{3, 99, 14, 27, 1.5, 60}
	list := make([]any, 0, len(values))
	for _, v := range values {
		list = append(list, map[string]any{"price": v})
	}

	got, ok := ExtractPrice(map[string]any{"list": list})
	if !ok {
		t.Fatal("ExtractPrice() found nothing")
	}
	if got < 1.5 || got > 99 {
		t.Errorf("ExtractPrice() = %v, outside [1.5, 99]", got)
	}
	if got != (14+27)/2.0 {
		t.Errorf("ExtractPrice() = %v, want %v", got, (14+27)/2.0)
	}
}

func TestExtractPriceDepthLimit(t *testing.T) {
	var deep any = map[string]any{"price": 42.0}
	for i := 0; i < maxPricingDepth+5; i++ {
		deep = map[string]any{"nested": deep}
	}
	if _, ok := ExtractPrice(deep); ok {
		t.Errorf("ExtractPrice() should stop walking past the depth limit")
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"currency string", "€ 12.50", 12.5, true},
		{"thousands separator", "$1,299.00", 1299, true},
		{"leading minus", "-5", -5, true},
		{"minus after currency symbol", "$-5", -5, true},
		{"minus after currency code", "USD -5", -5, true},
		{"range keeps low bound", "5-10", 5, true},
		{"lone minus", "-", 0, false},
		{"empty string", "", 0, false},
		{"two dots", "1.2.3", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.input)
			if ok != tt.ok || (ok && got != tt.expected) {
				t.Errorf("Number(%v) = %v, %v; want %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestPositiveNumberRejectsNegativeStrings(t *testing.T) {
	for _, in := range []string{"-5", "$-5", "USD -5", "0"} {
		if got, ok := PositiveNumber(in); ok {
			t.Errorf("PositiveNumber(%q) = %v, want rejected", in, got)
		}
	}
	if got, ok := PositiveNumber("5-10"); !ok || got != 5 {
		t.Errorf("PositiveNumber(\"5-10\") = %v, %v; want 5, true", got, ok)
	}
}

func TestMedian(t *testing.T) {
	input := []float64{30, 10, 20}
	if got := Median(input); got != 20 {
		t.Errorf("Median() = %v, want 20", got)
	}
	if input[0] != 30 {
		t.Errorf("Median() must not sort its input in place")
	}
	if got := Median([]float64{10, 20}); got != 15 {
		t.Errorf("Median() = %v, want 15", got)
	}
}

func TestNormalizeListings(t *testing.T) {
	pricing := map[string]any{
		"list": []any{
			map[string]any{
				"id":               "e1",
				"item_link":        "https://ebay.com/itm/1",
				"name":             "1999 Charizard PSA 9",
				"price":            "350.00",
				"currency":         "USD",
				"country_code":     "US",
				"source":           "ebay",
				"date_of_creation": "2024-01-02",
				"date_of_sale":     "2024-01-05",
				"grade":            9,
				"grade_company":    "PSA",
			},
			"garbage",
			map[string]any{"title": "second", "url": "https://x", "price": 10.0},
		},
	}

	got := NormalizeListings(pricing)
	if len(got) != 2 {
		t.Fatalf("NormalizeListings() returned %d listings, want 2", len(got))
	}
	first := got[0]
	if first.ID != "e1" || first.Link != "https://ebay.com/itm/1" || first.Price != 350 || first.Grade != "9" || first.SoldAt != "2024-01-05" {
		t.Errorf("NormalizeListings()[0] = %+v", first)
	}
	if got[1].Name != "second" || got[1].Link != "https://x" {
		t.Errorf("NormalizeListings()[1] = %+v", got[1])
	}

	if got := NormalizeListings(map[string]any{"list": []any{}}); got != nil {
		t.Errorf("NormalizeListings(empty) = %v, want nil", got)
	}
	if got := NormalizeListings(map[string]any{"avg": 3.0}); got != nil {
		t.Errorf("NormalizeListings(no list) = %v, want nil", got)
	}
}

package tuning

import (
	"fmt"
	"math"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

// Apply overlays file on base and validates the result.
func Apply(base resolver.Tuning, file File) (resolver.Tuning, error) {
	out := base

	w := &out.Weights
	for _, field := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"year", file.Weights.Year, &w.Year},
		{"set", file.Weights.Set, &w.Set},
		{"number", file.Weights.Number, &w.Number},
		{"links", file.Weights.Links, &w.Links},
		{"pricing", file.Weights.Pricing, &w.Pricing},
		{"subcategory", file.Weights.Subcategory, &w.Subcategory},
		{"ocr_keyword", file.Weights.OCRKeyword, &w.OCRKeyword},
	} {
		if field.src == nil {
			continue
		}
		v := *field.src
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return resolver.Tuning{}, fmt.Errorf("weight %s must be a finite value >= 0, got %v", field.name, v)
		}
		*field.dst = v
	}

	if len(file.TCGKeywords) > 0 {
		out.TCGKeywords = cleanList(file.TCGKeywords)
	} else {
		out.TCGKeywords = append([]string(nil), base.TCGKeywords...)
	}
	out.TCGKeywords = mergeUnique(out.TCGKeywords, cleanList(file.ExtraTCGKeywords))
	if len(out.TCGKeywords) == 0 {
		return resolver.Tuning{}, fmt.Errorf("tcg_keywords must not be empty")
	}

	if len(file.CategoryLabels) > 0 {
		out.CategoryLabels = cleanList(file.CategoryLabels)
		if len(out.CategoryLabels) == 0 {
			return resolver.Tuning{}, fmt.Errorf("category_labels must contain at least one non-empty label")
		}
	}

	return out, nil
}

// LoadTuning reads path and overlays it on the built-in defaults.
func LoadTuning(path string) (resolver.Tuning, error) {
	file, err := NewLoader(path).Load()
	if err != nil {
		return resolver.Tuning{}, err
	}
	return Apply(resolver.DefaultTuning(), file)
}

// cleanList lower-cases, trims and drops empty entries
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

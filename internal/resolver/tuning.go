package resolver

import (
	"slices"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

// DefaultTCGKeywords are the trading card game titles that route a card to
// the TCG strategy when found in its subcategory tag.
var DefaultTCGKeywords = []string{
	"pokemon",
	"pokémon",
	"magic",
	"yu-gi-oh",
	"yugioh",
	"one piece",
	"lorcana",
	"digimon",
	"dragon ball",
	"flesh and blood",
	"weiss schwarz",
	"cardfight",
	"star wars unlimited",
	"metazoo",
}

// Tuning is the runtime-adjustable part of the resolver.
type Tuning struct {
	Weights        domain.Weights
	TCGKeywords    []string
	CategoryLabels []string
}

// DefaultTuning returns the built-in tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Weights:        domain.DefaultWeights(),
		TCGKeywords:    slices.Clone(DefaultTCGKeywords),
		CategoryLabels: slices.Clone(recognition.DefaultCategoryLabels),
	}
}

// withDefaults fills empty lists with the built-in values.
func (t Tuning) withDefaults() Tuning {
	if len(t.TCGKeywords) == 0 {
		t.TCGKeywords = slices.Clone(DefaultTCGKeywords)
	}
	if len(t.CategoryLabels) == 0 {
		t.CategoryLabels = slices.Clone(recognition.DefaultCategoryLabels)
	}
	return t
}

// IsTCG reports whether subcategory names a known trading card game.
func (t Tuning) IsTCG(subcategory string) bool {
	sub := strings.ToLower(strings.TrimSpace(subcategory))
	if sub == "" {
		return false
	}
	for _, kw := range t.TCGKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(sub, kw) {
			return true
		}
	}
	return false
}

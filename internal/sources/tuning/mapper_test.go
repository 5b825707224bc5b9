package tuning

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

func f(v float64) *float64 { return &v }

func TestApplyKeepsDefaults(t *testing.T) {
	got, err := Apply(resolver.DefaultTuning(), File{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Weights != domain.DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", got.Weights)
	}
	if !slices.Equal(got.TCGKeywords, resolver.DefaultTCGKeywords) {
		t.Errorf("TCGKeywords = %v, want defaults", got.TCGKeywords)
	}
}

func TestApplyOverrides(t *testing.T) {
	file := File{
		Weights:          WeightsProps{Year: f(1), OCRKeyword: f(10)},
		TCGKeywords:      []string{" Pokemon ", "", "LORCANA"},
		ExtraTCGKeywords: []string{"lorcana", "Sorcery"},
		CategoryLabels:   []string{"Card", "Sticker"},
	}

	got, err := Apply(resolver.DefaultTuning(), file)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Weights.Year != 1 || got.Weights.OCRKeyword != 10 || got.Weights.Set != domain.ScoreSet {
		t.Errorf("Weights = %+v", got.Weights)
	}
	wantKeywords := []string{"pokemon", "lorcana", "sorcery"}
	if !slices.Equal(got.TCGKeywords, wantKeywords) {
		t.Errorf("TCGKeywords = %v, want %v", got.TCGKeywords, wantKeywords)
	}
	if !slices.Equal(got.CategoryLabels, []string{"card", "sticker"}) {
		t.Errorf("CategoryLabels = %v", got.CategoryLabels)
	}
}

func TestApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"negative weight", File{Weights: WeightsProps{Pricing: f(-1)}}},
		{"blank keywords", File{TCGKeywords: []string{" ", ""}}},
		{"blank labels", File{CategoryLabels: []string{" "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(resolver.DefaultTuning(), tt.file); err == nil {
				t.Errorf("Apply() with %s should fail", tt.name)
			}
		})
	}
}

func TestLoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("weights:\n  subcategory: 4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}
	if got.Weights.Subcategory != 4 {
		t.Errorf("Subcategory weight = %v, want 4", got.Weights.Subcategory)
	}
}

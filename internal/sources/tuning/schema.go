package tuning

// File is the top-level structure of the tuning YAML file.
// Every section is optional; omitted values keep the built-in defaults.
type File struct {
	Weights WeightsProps `yaml:"weights,omitempty"`

	// TCGKeywords replaces the built-in trading card game titles.
	TCGKeywords []string `yaml:"tcg_keywords,omitempty"`
	// ExtraTCGKeywords is appended to the active title list.
	ExtraTCGKeywords []string `yaml:"extra_tcg_keywords,omitempty"`

	// CategoryLabels replaces the object names that denote the collectible.
	CategoryLabels []string `yaml:"category_labels,omitempty"`
}

// WeightsProps uses pointers so that an explicit 0 differs from "not set".
type WeightsProps struct {
	Year        *float64 `yaml:"year,omitempty"`
	Set         *float64 `yaml:"set,omitempty"`
	Number      *float64 `yaml:"number,omitempty"`
	Links       *float64 `yaml:"links,omitempty"`
	Pricing     *float64 `yaml:"pricing,omitempty"`
	Subcategory *float64 `yaml:"subcategory,omitempty"`
	OCRKeyword  *float64 `yaml:"ocr_keyword,omitempty"`
}

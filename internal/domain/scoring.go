package domain

import (
	"slices"
	"strings"
)

// Weights are the per-signal contributions of the candidate score.
// The defaults are heuristic and exposed as a tuning surface.
type Weights struct {
	Year        float64 `yaml:"year" json:"year"`
	Set         float64 `yaml:"set" json:"set"`
	Number      float64 `yaml:"number" json:"number"`
	Links       float64 `yaml:"links" json:"links"`
	Pricing     float64 `yaml:"pricing" json:"pricing"`
	Subcategory float64 `yaml:"subcategory" json:"subcategory"`
	OCRKeyword  float64 `yaml:"ocr_keyword" json:"ocrKeyword"`
}

const (
	// Default scoring weights
	ScoreYear        = 2.0
	ScoreSet         = 2.0
	ScoreNumber      = 2.0
	ScoreLinks       = 1.0
	ScorePricing     = 2.0
	ScoreSubcategory = 3.0
	ScoreOCRKeyword  = 5.0
)

// DefaultWeights returns the built-in weights.
func DefaultWeights() Weights {
	return Weights{
		Year:        ScoreYear,
		Set:         ScoreSet,
		Number:      ScoreNumber,
		Links:       ScoreLinks,
		Pricing:     ScorePricing,
		Subcategory: ScoreSubcategory,
		OCRKeyword:  ScoreOCRKeyword,
	}
}

// Candidate pairs a match with its computed score.
type Candidate struct {
	Match *CandidateMatch
	Score float64
}

// Picker selects the best candidate for one recognized object.
// It is stateless and safe for concurrent use.
type Picker struct {
	Weights Weights
}

// NewPicker returns a picker using w.
func NewPicker(w Weights) *Picker {
	return &Picker{Weights: w}
}

// Score sums every independent signal the match carries.
func (p *Picker) Score(m *CandidateMatch, tags *ClassificationTags, keywords []string) float64 {
	if m == nil {
		return 0.0
	}

	w := p.Weights
	var score float64

	if m.Year != "" {
		score += w.Year
	}
	if m.SetLabel() != "" {
		score += w.Set
	}
	if m.CardNo() != "" {
		score += w.Number
	}
	if len(m.Links) > 0 {
		score += w.Links
	}
	if m.HasPricing() {
		score += w.Pricing
	}
	if tagSubcategory(tags) != "" && subcategoryMatches(m, tags) {
		score += w.Subcategory
	}
	if keywordHit(m, keywords) {
		score += w.OCRKeyword
	}

	return score
}

// Rank scores every candidate and sorts them by score (descending).
// Equal scores keep their original order.
func (p *Picker) Rank(matches []*CandidateMatch, tags *ClassificationTags, keywords []string) []*Candidate {
	candidates := make([]*Candidate, 0, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		candidates = append(candidates, &Candidate{
			Match: m,
			Score: p.Score(m, tags, keywords),
		})
	}

	slices.SortStableFunc(candidates, func(a, b *Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return candidates
}

// Pick returns the best candidate, or nil when there is none.
//
// matches[0] is the service's own best match. It wins outright when at least
// one independent signal (subcategory tag or OCR keywords) is available and
// none of them contradicts it. Otherwise every candidate is scored.
func (p *Picker) Pick(matches []*CandidateMatch, tags *ClassificationTags, keywords []string) *CandidateMatch {
	if len(matches) == 0 {
		return nil
	}

	if best := matches[0]; best != nil && hasEvidence(tags, keywords) {
		consistent := tagSubcategory(tags) == "" || best.Subcategory == "" || subcategoryMatches(best, tags)
		confirmed := len(keywords) == 0 || keywordHit(best, keywords)
		if consistent && confirmed {
			return best
		}
	}

	ranked := p.Rank(matches, tags, keywords)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Match
}

func hasEvidence(tags *ClassificationTags, keywords []string) bool {
	return tagSubcategory(tags) != "" || len(keywords) > 0
}

func tagSubcategory(tags *ClassificationTags) string {
	if tags == nil {
		return ""
	}
	return strings.TrimSpace(tags.Subcategory)
}

// subcategoryMatches is a case-insensitive substring test in either direction.
func subcategoryMatches(m *CandidateMatch, tags *ClassificationTags) bool {
	tag := tagSubcategory(tags)
	sub := strings.TrimSpace(m.Subcategory)
	if tag == "" || sub == "" {
		return false
	}
	return containsFold(sub, tag) || containsFold(tag, sub)
}

func keywordHit(m *CandidateMatch, keywords []string) bool {
	name := strings.ToLower(m.DisplayName())
	if name == "" {
		return false
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

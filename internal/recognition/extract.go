package recognition

import (
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// DefaultCategoryLabels are the object names that denote the collectible itself.
var DefaultCategoryLabels = []string{"card", "comics", "comic"}

// Category kinds returned by Categorize.
const (
	KindCard   = "card"
	KindComics = "comics"
)

// Tag families consulted for the subcategory label, in priority order.
var subcategoryFamilies = []string{"Subcategory", "Category", "Top Category", "Sport"}

// Tag families consulted for the coarse category.
var categoryFamilies = []string{"Top Category", "Category"}

// Extraction is what one response contributes to candidate selection.
type Extraction struct {
	Candidates []*domain.CandidateMatch
	Tags       *domain.ClassificationTags
	Object     *Object
}

// Empty reports whether no candidate was extracted.
func (e Extraction) Empty() bool { return len(e.Candidates) == 0 }

// Extract locates the object standing for the collectible and returns its
// candidates (best match first, then alternatives in source order) and tags.
// A record without a qualifying object yields an empty Extraction.
func Extract(rec *Record, labels []string) Extraction {
	obj := selectObject(rec, labels)
	if obj == nil {
		return Extraction{}
	}
	return Extraction{
		Candidates: obj.Candidates(),
		Tags:       tagsOf(obj),
		Object:     obj,
	}
}

// selectObject prefers a name match against labels, then the first object
// carrying any identification payload.
func selectObject(rec *Record, labels []string) *Object {
	if rec == nil {
		return nil
	}
	if obj := namedObject(rec, labels); obj != nil {
		return obj
	}
	for i := range rec.Objects {
		if rec.Objects[i].HasIdentification() {
			return &rec.Objects[i]
		}
	}
	return nil
}

func namedObject(rec *Record, labels []string) *Object {
	if len(labels) == 0 {
		labels = DefaultCategoryLabels
	}
	for i := range rec.Objects {
		if matchesLabel(rec.Objects[i].Name, labels) {
			return &rec.Objects[i]
		}
	}
	return nil
}

func matchesLabel(name string, labels []string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, label := range labels {
		if strings.EqualFold(name, strings.TrimSpace(label)) {
			return true
		}
	}
	return false
}

func tagsOf(obj *Object) *domain.ClassificationTags {
	tags := &domain.ClassificationTags{
		Grade:        obj.Tag("Grade"),
		GradeCompany: obj.Tag("Company"),
	}
	for _, family := range subcategoryFamilies {
		if v := obj.Tag(family); v != "" {
			tags.Subcategory = v
			break
		}
	}
	if tags.IsZero() {
		return nil
	}
	return tags
}

// Category is the coarse classification of the primary object.
type Category struct {
	Kind        string
	Subcategory string
}

// Categorize reads the kind (card or comics) and subcategory of the primary
// object of a generic categorization response. Unknown kinds are returned empty.
func Categorize(rec *Record, labels []string) Category {
	if rec == nil || len(rec.Objects) == 0 {
		return Category{}
	}
	obj := namedObject(rec, labels)
	if obj == nil {
		obj = &rec.Objects[0]
	}

	cat := Category{Kind: kindOf(obj.Name)}
	if cat.Kind == "" {
		for _, family := range categoryFamilies {
			if cat.Kind = kindOf(obj.Tag(family)); cat.Kind != "" {
				break
			}
		}
	}
	if tags := tagsOf(obj); tags != nil {
		cat.Subcategory = tags.Subcategory
	}
	return cat
}

func kindOf(label string) string {
	label = strings.ToLower(label)
	switch {
	case strings.Contains(label, "comic"):
		return KindComics
	case strings.Contains(label, "card"):
		return KindCard
	default:
		return ""
	}
}

// CountObjects counts the objects whose name matches labels.
func CountObjects(rec *Record, labels []string) int {
	if rec == nil {
		return 0
	}
	if len(labels) == 0 {
		labels = DefaultCategoryLabels
	}
	n := 0
	for i := range rec.Objects {
		if matchesLabel(rec.Objects[i].Name, labels) {
			n++
		}
	}
	return n
}

// FirstOCR returns the unscored candidate of an OCR response: the best match
// of the primary object, else its first alternative.
func FirstOCR(rec *Record, labels []string) (*domain.CandidateMatch, *domain.ClassificationTags) {
	if rec == nil || len(rec.Objects) == 0 {
		return nil, nil
	}
	obj := namedObject(rec, labels)
	if obj == nil {
		obj = &rec.Objects[0]
	}
	if obj.BestMatch != nil {
		return obj.BestMatch, tagsOf(obj)
	}
	if len(obj.Alternatives) > 0 {
		return obj.Alternatives[0], tagsOf(obj)
	}
	return nil, nil
}

// Keywords harvests keyword hints from an OCR response: raw text fragments
// plus the names the OCR strategy itself proposed.
func Keywords(rec *Record) []string {
	if rec == nil {
		return nil
	}
	texts := append([]string(nil), rec.OCRText...)
	for i := range rec.Objects {
		obj := &rec.Objects[i]
		texts = append(texts, obj.OCRText...)
		if obj.BestMatch != nil {
			texts = append(texts, obj.BestMatch.DisplayName())
		}
	}
	return domain.ParseKeywords(texts...)
}

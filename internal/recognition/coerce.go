package recognition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// The recognition service documents its payloads loosely and changes them
// between strategies. Everything below turns decoded JSON (any) into the
// narrow shapes the rest of the code consumes. Missing or mistyped fields are
// dropped, never reported.

// maxTextDepth bounds the walk over free-form OCR payloads.
const maxTextDepth = 4

// Response is a coerced recognition response.
type Response struct {
	Records []Record
}

// First returns the first record, or nil.
func (r *Response) First() *Record {
	if r == nil || len(r.Records) == 0 {
		return nil
	}
	return &r.Records[0]
}

// Status is the per-record `_status` block.
type Status struct {
	Code    int
	Text    string
	Present bool
}

// Record is one entry of `records`.
type Record struct {
	Status  Status
	Side    string
	Objects []Object

	// Grading shapes.
	Grades    map[string]any
	CardInfo  []map[string]any
	Condition []map[string]any

	// OCRText holds record-level text fragments, if any.
	OCRText []string
}

// OK reports whether the record did not flag a failure. An absent status counts as success.
func (r *Record) OK() bool {
	if r == nil {
		return false
	}
	if !r.Status.Present || r.Status.Code == 0 {
		return true
	}
	return r.Status.Code >= 200 && r.Status.Code < 300
}

// Object is one recognized object inside a record.
type Object struct {
	Name         string
	BestMatch    *domain.CandidateMatch
	Alternatives []*domain.CandidateMatch
	// Tags maps a tag family (Grade, Company, Subcategory...) to its labels in source order.
	Tags      map[string][]string
	Condition []map[string]any
	OCRText   []string
}

// HasIdentification reports whether the object carries any candidate.
func (o *Object) HasIdentification() bool {
	return o != nil && (o.BestMatch != nil || len(o.Alternatives) > 0)
}

// Candidates returns the best match followed by the alternatives.
func (o *Object) Candidates() []*domain.CandidateMatch {
	if o == nil {
		return nil
	}
	out := make([]*domain.CandidateMatch, 0, 1+len(o.Alternatives))
	if o.BestMatch != nil {
		out = append(out, o.BestMatch)
	}
	return append(out, o.Alternatives...)
}

// Tag returns the first label of a tag family, matching the family name case-insensitively.
func (o *Object) Tag(family string) string {
	if o == nil {
		return ""
	}
	if labels := o.Tags[family]; len(labels) > 0 {
		return labels[0]
	}
	for k, labels := range o.Tags {
		if strings.EqualFold(k, family) && len(labels) > 0 {
			return labels[0]
		}
	}
	return ""
}

// Parse decodes a response body and coerces it.
func Parse(data []byte) (*Response, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty response body")
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected top-level %T", raw)
	}
	return Coerce(root), nil
}

// Coerce builds a Response from an already decoded payload.
func Coerce(root map[string]any) *Response {
	resp := &Response{}
	for _, item := range asMaps(root["records"]) {
		resp.Records = append(resp.Records, coerceRecord(item))
	}
	return resp
}

func coerceRecord(m map[string]any) Record {
	rec := Record{
		Status:    coerceStatus(m["_status"]),
		Side:      domain.Text(m["Side"]),
		Grades:    asMap(m["grades"]),
		CardInfo:  asMaps(m["card"]),
		Condition: asMaps(m["Condition"]),
		OCRText:   collectOCR(m),
	}
	for _, obj := range asMaps(m["_objects"]) {
		rec.Objects = append(rec.Objects, coerceObject(obj))
	}
	return rec
}

func coerceStatus(v any) Status {
	m := asMap(v)
	if m == nil {
		return Status{}
	}
	st := Status{Present: true, Text: domain.Text(m["text"])}
	if code, ok := domain.Number(m["code"]); ok {
		st.Code = int(code)
	}
	return st
}

func coerceObject(m map[string]any) Object {
	obj := Object{
		Name:      domain.Text(m["name"]),
		Tags:      coerceTags(m["_tags"]),
		Condition: asMaps(m["Condition"]),
		OCRText:   collectOCR(m),
	}
	if ident := asMap(m["_identification"]); ident != nil {
		obj.BestMatch = coerceMatch(ident["best_match"])
		for _, alt := range asSlice(ident["alternatives"]) {
			if match := coerceMatch(alt); match != nil {
				obj.Alternatives = append(obj.Alternatives, match)
			}
		}
	}
	return obj
}

// coerceMatch returns nil for anything that is not a non-empty object.
func coerceMatch(v any) *domain.CandidateMatch {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	return &domain.CandidateMatch{
		Name:              domain.Text(m["name"]),
		FullName:          domain.Text(m["full_name"]),
		Year:              domain.Text(m["year"]),
		Set:               domain.Text(m["set"]),
		SetName:           domain.Text(m["set_name"]),
		SetCode:           domain.Text(m["set_code"]),
		Series:            domain.Text(m["series"]),
		CardNumber:        domain.Text(m["card_number"]),
		Number:            domain.Text(m["number"]),
		Subcategory:       domain.Text(m["subcategory"]),
		Company:           domain.Text(m["company"]),
		Team:              domain.Text(m["team"]),
		Rarity:            domain.Text(m["rarity"]),
		Grade:             domain.Text(m["grade"]),
		CertificateNumber: domain.Text(m["certificate_number"]),
		Pricing:           m["pricing"],
		Links:             coerceLinks(m["links"]),
		Color:             domain.Text(m["color"]),
		Type:              domain.Text(m["type"]),
		Title:             domain.Text(m["title"]),
		Publisher:         domain.Text(m["publisher"]),
		Date:              firstNonEmpty(domain.Text(m["date"]), domain.Text(m["release_date"])),
	}
}

func coerceLinks(v any) map[string]string {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	links := make(map[string]string, len(m))
	for k, raw := range m {
		if s := domain.Text(raw); s != "" {
			links[k] = s
		}
	}
	if len(links) == 0 {
		return nil
	}
	return links
}

// coerceTags accepts `{"Grade":[{"name":"9"}]}`, `{"Grade":{"name":"9"}}` and `{"Grade":"9"}`.
func coerceTags(v any) map[string][]string {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	tags := make(map[string][]string, len(m))
	for family, raw := range m {
		var labels []string
		items := asSlice(raw)
		if items == nil {
			items = []any{raw}
		}
		for _, item := range items {
			label := domain.Text(item)
			if label == "" {
				label = domain.Text(asMap(item)["name"])
			}
			if label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) > 0 {
			tags[family] = labels
		}
	}
	return tags
}

var ocrKeys = []string{"_ocr", "ocr", "ocr_text", "text"}

func collectOCR(m map[string]any) []string {
	var out []string
	for _, key := range ocrKeys {
		collectText(m[key], 0, &out)
	}
	return out
}

func collectText(v any, depth int, out *[]string) {
	if depth > maxTextDepth {
		return
	}
	switch node := v.(type) {
	case string:
		if s := strings.TrimSpace(node); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, item := range node {
			collectText(item, depth+1, out)
		}
	case map[string]any:
		for _, key := range []string{"text", "texts", "name", "value"} {
			collectText(node[key], depth+1, out)
		}
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asMaps(v any) []map[string]any {
	var out []map[string]any
	for _, item := range asSlice(v) {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package domain

import "strings"

// CandidateMatch is one proposed identification returned by the recognition
// service, already coerced into a narrow shape by the recognition package.
// Year is kept as text: numeric years are stringified during coercion.
type CandidateMatch struct {
	Name     string
	FullName string

	Year    string
	Set     string
	SetName string
	SetCode string
	Series  string

	// CardNumber and Number are the two field names used across strategies.
	CardNumber string
	Number     string

	Subcategory       string
	Company           string
	Team              string
	Rarity            string
	Grade             string
	CertificateNumber string

	// Pricing is the raw, shape-unstable pricing payload (decoded JSON).
	Pricing any

	Links map[string]string

	// TCG
	Color string
	Type  string

	// Comics
	Title     string
	Publisher string
	Date      string
}

// DisplayName is the primary name, else the full-name variant.
func (m *CandidateMatch) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.FullName
}

// SetLabel returns whichever set field the strategy filled in.
func (m *CandidateMatch) SetLabel() string {
	if m.Set != "" {
		return m.Set
	}
	return m.SetName
}

// CardNo prefers card_number over number.
func (m *CandidateMatch) CardNo() string {
	if m.CardNumber != "" {
		return m.CardNumber
	}
	return m.Number
}

// HasPricing reports a non-empty pricing payload. Only maps, lists and
// strings count; bare numbers and booleans do not.
func (m *CandidateMatch) HasPricing() bool {
	switch p := m.Pricing.(type) {
	case nil:
		return false
	case map[string]any:
		return len(p) > 0
	case []any:
		return len(p) > 0
	case string:
		return strings.TrimSpace(p) != ""
	default:
		return false
	}
}

// ClassificationTags are auxiliary labels attached to a recognized object.
// They only feed scoring and assembly; they are never stored on their own.
type ClassificationTags struct {
	Grade        string
	GradeCompany string
	Subcategory  string
}

// IsZero reports whether no tag is set.
func (t *ClassificationTags) IsZero() bool {
	return t == nil || (t.Grade == "" && t.GradeCompany == "" && t.Subcategory == "")
}

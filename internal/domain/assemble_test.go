package domain

import (
	"testing"
)

func TestAssembleNil(t *testing.T) {
	if got := Assemble(nil, &ClassificationTags{Grade: "10"}); got != nil {
		t.Errorf("Assemble(nil) = %+v, want nil", got)
	}
}

func TestAssembleNameFallback(t *testing.T) {
	tests := []struct {
		name     string
		match    *CandidateMatch
		expected string
	}{
		{"primary name", &CandidateMatch{Name: "Charizard", FullName: "Charizard Holo"}, "Charizard"},
		{"full name", &CandidateMatch{FullName: "Charizard Holo"}, "Charizard Holo"},
		{"placeholder", &CandidateMatch{Year: "1999"}, UnknownCardName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Assemble(tt.match, nil)
			if card == nil {
				t.Fatal("Assemble() returned nil")
			}
			if card.Name != tt.expected {
				t.Errorf("Assemble().Name = %q, want %q", card.Name, tt.expected)
			}
		})
	}
}

func TestAssembleFields(t *testing.T) {
	match := &CandidateMatch{
		Name:              "Mike Trout",
		Year:              "2011",
		SetName:           "Topps Update",
		Number:            "US175",
		Subcategory:       "Baseball",
		Team:              "Los Angeles Angels",
		Company:           "Topps",
		Grade:             "8",
		CertificateNumber: "12345678",
		Links:             map[string]string{"ebay": "https://ebay.com/x"},
		Pricing: map[string]any{
			"list": []any{
				map[string]any{"price": 100.0, "source": "ebay"},
				map[string]any{"price": 300.0, "source": "ebay"},
			},
		},
	}
	tags := &ClassificationTags{Grade: "10", GradeCompany: "PSA"}

	card := Assemble(match, tags)

	if card.Set != "Topps Update" {
		t.Errorf("Set = %q, want set_name fallback", card.Set)
	}
	if card.CardNumber != "US175" {
		t.Errorf("CardNumber = %q, want number fallback", card.CardNumber)
	}
	if card.Grade != "10" || card.GradeCompany != "PSA" {
		t.Errorf("Grade = %q/%q, want tag values 10/PSA", card.Grade, card.GradeCompany)
	}
	if card.Price == nil || *card.Price != 200 {
		t.Errorf("Price = %v, want 200", card.Price)
	}
	if len(card.Listings) != 2 || card.Listings[0].Price != 100 {
		t.Errorf("Listings = %+v", card.Listings)
	}
	if card.ID != "" || card.ImageURI != "" || card.FolderID != nil || !card.DateAdded.IsZero() {
		t.Errorf("Assemble() must not assign identity, image, folder or timestamp: %+v", card)
	}

	match.Links["ebay"] = "changed"
	if card.Links["ebay"] != "https://ebay.com/x" {
		t.Errorf("Assemble() must copy links")
	}
}

func TestAssembleGradeFallsBackToMatch(t *testing.T) {
	card := Assemble(&CandidateMatch{Name: "x", Grade: "7"}, &ClassificationTags{GradeCompany: "BGS"})
	if card.Grade != "7" {
		t.Errorf("Grade = %q, want 7", card.Grade)
	}
	if card.Price != nil {
		t.Errorf("Price = %v, want nil without pricing", *card.Price)
	}
	if card.Listings != nil {
		t.Errorf("Listings = %v, want nil", card.Listings)
	}
}

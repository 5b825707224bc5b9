package domain

import "maps"

// Assemble maps the chosen candidate (plus its object's tags) to a Card.
// Returns nil when m is nil. Identity, image references, folder and
// timestamp are left for the caller.
func Assemble(m *CandidateMatch, tags *ClassificationTags) *Card {
	if m == nil {
		return nil
	}

	card := &Card{
		Name:              m.DisplayName(),
		Year:              m.Year,
		Set:               m.SetLabel(),
		SetCode:           m.SetCode,
		Series:            m.Series,
		CardNumber:        m.CardNo(),
		Subcategory:       m.Subcategory,
		Company:           m.Company,
		Team:              m.Team,
		Rarity:            m.Rarity,
		CertificateNumber: m.CertificateNumber,
		Color:             m.Color,
		Type:              m.Type,
		Title:             m.Title,
		Publisher:         m.Publisher,
		ReleaseDate:       m.Date,
		Grade:             m.Grade,
		Listings:          NormalizeListings(m.Pricing),
	}
	if card.Name == "" {
		card.Name = UnknownCardName
	}
	if len(m.Links) > 0 {
		card.Links = maps.Clone(m.Links)
	}
	if price, ok := ExtractPrice(m.Pricing); ok {
		card.Price = &price
	}

	// Tags come from a dedicated grading sub-analysis and win over the match.
	if tags != nil {
		if tags.Grade != "" {
			card.Grade = tags.Grade
		}
		card.GradeCompany = tags.GradeCompany
	}

	return card
}

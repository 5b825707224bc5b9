package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnknownCardName is used when no candidate supplies a usable name.
const UnknownCardName = "Unknown Card"

// Card is the normalized record kept in the collection.
//
// A Card is built by Assemble from exactly one CandidateMatch. Identity,
// image references, folder and timestamp are assigned by the caller when the
// card is saved, never by the resolver.
type Card struct {
	// ─────────────────────────────
	// Identity (assigned at save time)
	// ─────────────────────────────

	// ID is an opaque identifier (uuid) assigned by the collection store.
	ID string `json:"id"`

	// Name is always non-empty. Falls back to UnknownCardName.
	Name string `json:"name"`

	// ─────────────────────────────
	// Description (mirrors CandidateMatch)
	// ─────────────────────────────

	Year              string            `json:"year,omitempty"`
	Set               string            `json:"set,omitempty"`
	SetCode           string            `json:"setCode,omitempty"`
	Series            string            `json:"series,omitempty"`
	CardNumber        string            `json:"cardNumber,omitempty"`
	Subcategory       string            `json:"subcategory,omitempty"`
	Company           string            `json:"company,omitempty"`
	Team              string            `json:"team,omitempty"`
	Rarity            string            `json:"rarity,omitempty"`
	CertificateNumber string            `json:"certificateNumber,omitempty"`
	Links             map[string]string `json:"links,omitempty"`

	// TCG specific
	Color string `json:"color,omitempty"`
	Type  string `json:"type,omitempty"`

	// Comics specific
	Title       string `json:"title,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`

	// ─────────────────────────────
	// Market & grading
	// ─────────────────────────────

	// Price is the representative market price (median of observed values).
	Price *float64 `json:"price,omitempty"`

	// Listings preserves the source ordering. Nil when the source had none.
	Listings []MarketListing `json:"listings,omitempty"`

	Grade        string `json:"grade,omitempty"`
	GradeCompany string `json:"gradeCompany,omitempty"`

	// ─────────────────────────────
	// Collection state (owned by the store)
	// ─────────────────────────────

	ImageURI     string    `json:"imageUri"`
	BackImageURI string    `json:"backImageUri,omitempty"`
	DateAdded    time.Time `json:"dateAdded,omitzero"`

	// FolderID is nil when the card is not in any folder.
	FolderID *string `json:"folderId"`
}

// InFolder reports whether the card is assigned to folderID.
func (c *Card) InFolder(folderID string) bool {
	return c.FolderID != nil && *c.FolderID == folderID
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Links != nil {
		cp.Links = make(map[string]string, len(c.Links))
		for k, v := range c.Links {
			cp.Links[k] = v
		}
	}
	if c.Listings != nil {
		cp.Listings = append([]MarketListing(nil), c.Listings...)
	}
	if c.Price != nil {
		p := *c.Price
		cp.Price = &p
	}
	if c.FolderID != nil {
		f := *c.FolderID
		cp.FolderID = &f
	}
	return &cp
}

// Folder groups cards. Deleting a folder never deletes its cards.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarketListing is one observed sale or listing taken from a pricing payload.
type MarketListing struct {
	ID           string  `json:"id,omitempty"`
	Link         string  `json:"link,omitempty"`
	Name         string  `json:"name,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	CountryCode  string  `json:"countryCode,omitempty"`
	Source       string  `json:"source,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	SoldAt       string  `json:"soldAt,omitempty"`
	Grade        string  `json:"grade,omitempty"`
	GradeCompany string  `json:"gradeCompany,omitempty"`
}

// CardPatch is a partial update. Nil fields are left untouched.
// Folder assignment goes through MoveCardToFolder instead.
type CardPatch struct {
	Name         *string  `json:"name,omitempty"`
	Year         *string  `json:"year,omitempty"`
	Set          *string  `json:"set,omitempty"`
	CardNumber   *string  `json:"cardNumber,omitempty"`
	Subcategory  *string  `json:"subcategory,omitempty"`
	Team         *string  `json:"team,omitempty"`
	Rarity       *string  `json:"rarity,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Grade        *string  `json:"grade,omitempty"`
	GradeCompany *string  `json:"gradeCompany,omitempty"`
	ImageURI     *string  `json:"imageUri,omitempty"`
	BackImageURI *string  `json:"backImageUri,omitempty"`
}

// Validate rejects patches that would break the non-empty name invariant.
func (p CardPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

// Apply copies every set field of the patch onto c.
func (p CardPatch) Apply(c *Card) {
	setString(&c.Name, p.Name)
	setString(&c.Year, p.Year)
	setString(&c.Set, p.Set)
	setString(&c.CardNumber, p.CardNumber)
	setString(&c.Subcategory, p.Subcategory)
	setString(&c.Team, p.Team)
	setString(&c.Rarity, p.Rarity)
	setString(&c.Grade, p.Grade)
	setString(&c.GradeCompany, p.GradeCompany)
	setString(&c.ImageURI, p.ImageURI)
	setString(&c.BackImageURI, p.BackImageURI)
	if p.Price != nil {
		v := *p.Price
		c.Price = &v
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

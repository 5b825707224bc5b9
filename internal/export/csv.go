// Package export renders the collection as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// Header is the fixed column order of the export.
var Header = []string{
	"Name",
	"Year",
	"Set",
	"Card Number",
	"Sport/Category",
	"Team",
	"Rarity",
	"Price",
	"Grade",
	"Grade Company",
	"Date Added",
}

// DateLayout formats the Date Added column.
const DateLayout = "2006-01-02"

// FileName returns the suggested download name for an export made at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("scanvault_collection_%s.csv", now.UTC().Format("20060102_150405"))
}

// WriteCSV writes a header row followed by one row per card, in the given order.
func WriteCSV(w io.Writer, cards []*domain.Card) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, c := range cards {
		if c == nil {
			continue
		}
		if err := cw.Write(Row(c)); err != nil {
			return fmt.Errorf("writing CSV row for card %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// Row renders one card. Missing values are empty cells.
func Row(c *domain.Card) []string {
	price := ""
	if c.Price != nil {
		price = strconv.FormatFloat(*c.Price, 'f', 2, 64)
	}
	added := ""
	if !c.DateAdded.IsZero() {
		added = c.DateAdded.UTC().Format(DateLayout)
	}

	return []string{
		c.Name,
		c.Year,
		c.Set,
		c.CardNumber,
		c.Subcategory,
		c.Team,
		c.Rarity,
		price,
		c.Grade,
		c.GradeCompany,
		added,
	}
}

package recognition

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// Image is one image handed to the service, as base64 or as a remote URL.
type Image struct {
	Base64 string
	URL    string
	// Side is "front" or "back"; only the grade endpoint reads it.
	Side string
}

// Empty reports whether neither payload is set.
func (img Image) Empty() bool {
	return strings.TrimSpace(img.Base64) == "" && strings.TrimSpace(img.URL) == ""
}

// Validate rejects empty images and base64 payloads shorter than minLength.
func (img Image) Validate(minLength int) error {
	if img.Empty() {
		return fmt.Errorf("%w: image payload is empty", domain.ErrInvalidInput)
	}
	if img.URL == "" && len(strings.TrimSpace(img.Base64)) < minLength {
		return fmt.Errorf("%w: image payload is implausibly short (%d < %d)",
			domain.ErrInvalidInput, len(strings.TrimSpace(img.Base64)), minLength)
	}
	return nil
}

// Options are the endpoint specific flags. False/empty values are omitted
// from the request body.
type Options struct {
	Pricing      bool
	PriceSources []string
	SlabID       bool
	SlabGrade    bool
	AnalyzeAll   bool
	Lang         string
	Mode         string
}

type requestRecord struct {
	Base64 string `json:"_base64,omitempty"`
	URL    string `json:"_url,omitempty"`
	Side   string `json:"Side,omitempty"`
}

type requestBody struct {
	Records      []requestRecord `json:"records"`
	Pricing      bool            `json:"pricing,omitempty"`
	PriceSources []string        `json:"price_sources,omitempty"`
	SlabID       bool            `json:"slab_id,omitempty"`
	SlabGrade    bool            `json:"slab_grade,omitempty"`
	AnalyzeAll   bool            `json:"analyze_all,omitempty"`
	Lang         string          `json:"lang,omitempty"`
	Mode         string          `json:"mode,omitempty"`
}

func buildBody(images []Image, opts Options) requestBody {
	body := requestBody{
		Records:    make([]requestRecord, 0, len(images)),
		Pricing:    opts.Pricing,
		SlabID:     opts.SlabID,
		SlabGrade:  opts.SlabGrade,
		AnalyzeAll: opts.AnalyzeAll,
		Lang:       opts.Lang,
		Mode:       opts.Mode,
	}
	if opts.Pricing {
		body.PriceSources = opts.PriceSources
	}
	for _, img := range images {
		rec := requestRecord{Side: img.Side}
		if img.URL != "" {
			rec.URL = img.URL
		} else {
			rec.Base64 = img.Base64
		}
		body.Records = append(body.Records, rec)
	}
	return body
}

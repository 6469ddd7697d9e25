package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/provider"
)

const (
	googleBooksID      = "googlebooks"
	googleBooksBaseURL = "https://www.googleapis.com/books/v1"
)

// GoogleBooks implements the provider contract against the Google Books
// volumes API.
type GoogleBooks struct {
	settings
}

// Compile-time check that GoogleBooks implements provider.Provider.
var _ provider.Provider = (*GoogleBooks)(nil)

// NewGoogleBooks creates a Google Books provider.
func NewGoogleBooks(opts ...Option) *GoogleBooks {
	s := newSettings(googleBooksBaseURL)
	for _, opt := range opts {
		opt(&s)
	}
	return &GoogleBooks{settings: s}
}

// Info returns static source metadata.
func (p *GoogleBooks) Info() provider.SourceInfo {
	return provider.SourceInfo{
		ID:          googleBooksID,
		Name:        "Google Books",
		Description: "Google Books volume search",
		BaseURL:     p.baseURL,
	}
}

// googleBooksResponse matches the volumes list endpoint.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			AverageRating float64  `json:"averageRating"` // 0-5
			Categories    []string `json:"categories"`
			Language      string   `json:"language"`
			CanonicalLink string   `json:"canonicalVolumeLink"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search queries the volumes endpoint and maps items to metadata records.
func (p *GoogleBooks) Search(ctx context.Context, query, locale string, maxResults int) ([]model.MetadataRecord, error) {
	u := fmt.Sprintf("%s/volumes?q=%s&maxResults=%d&langRestrict=%s",
		p.baseURL, url.QueryEscape(query), maxResults, url.QueryEscape(locale))

	var res googleBooksResponse
	if err := p.fetchJSON(ctx, u, &res); err != nil {
		return nil, err
	}

	records := make([]model.MetadataRecord, 0, len(res.Items))
	for _, item := range res.Items {
		if len(records) >= maxResults {
			break
		}
		vi := item.VolumeInfo
		rec := model.MetadataRecord{
			SourceID:      googleBooksID,
			ExternalID:    item.ID,
			Title:         vi.Title,
			Authors:       vi.Authors,
			URL:           vi.CanonicalLink,
			CoverURL:      vi.ImageLinks.Thumbnail,
			Description:   vi.Description,
			Publisher:     vi.Publisher,
			PublishedDate: vi.PublishedDate,
			Rating:        vi.AverageRating,
			Tags:          vi.Categories,
		}
		if vi.Language != "" {
			rec.Languages = []string{vi.Language}
		}
		for _, ident := range vi.IndustryIdentifiers {
			// Prefer ISBN-13 over ISBN-10 when both are present.
			if !strings.HasPrefix(ident.Type, "ISBN") {
				continue
			}
			if rec.Identifiers == nil {
				rec.Identifiers = map[string]string{}
			}
			if cur, ok := rec.Identifiers[model.IdentifierISBN]; !ok || (ident.Type == "ISBN_13" && len(cur) != 13) {
				rec.Identifiers[model.IdentifierISBN] = ident.Identifier
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/provider"
)

const (
	openLibraryID      = "openlibrary"
	openLibraryBaseURL = "https://openlibrary.org"
	openLibraryCovers  = "https://covers.openlibrary.org"
)

// OpenLibrary implements the provider contract against openlibrary.org.
type OpenLibrary struct {
	settings
}

// Compile-time check that OpenLibrary implements provider.Provider.
var _ provider.Provider = (*OpenLibrary)(nil)

// NewOpenLibrary creates an Open Library provider.
func NewOpenLibrary(opts ...Option) *OpenLibrary {
	s := newSettings(openLibraryBaseURL)
	for _, opt := range opts {
		opt(&s)
	}
	return &OpenLibrary{settings: s}
}

// Info returns static source metadata.
func (p *OpenLibrary) Info() provider.SourceInfo {
	return provider.SourceInfo{
		ID:          openLibraryID,
		Name:        "Open Library",
		Description: "Open Library book search",
		BaseURL:     p.baseURL,
	}
}

// openLibrarySearchResponse matches search.json.
type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorNames      []string `json:"author_name"`
		ISBN             []string `json:"isbn"`
		Publisher        []string `json:"publisher"`
		FirstPublishYear int      `json:"first_publish_year"`
		Language         []string `json:"language"`
		Subject          []string `json:"subject"`
		CoverID          int      `json:"cover_i"`
		RatingsAverage   float64  `json:"ratings_average"`
	} `json:"docs"`
}

// Search queries search.json and maps the docs to metadata records.
func (p *OpenLibrary) Search(ctx context.Context, query, locale string, maxResults int) ([]model.MetadataRecord, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d&fields=key,title,author_name,isbn,publisher,first_publish_year,language,subject,cover_i,ratings_average&lang=%s",
		p.baseURL, url.QueryEscape(query), maxResults, url.QueryEscape(locale))

	var res openLibrarySearchResponse
	if err := p.fetchJSON(ctx, u, &res); err != nil {
		return nil, err
	}

	records := make([]model.MetadataRecord, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if len(records) >= maxResults {
			break
		}
		rec := model.MetadataRecord{
			SourceID:   openLibraryID,
			ExternalID: doc.Key,
			Title:      doc.Title,
			Authors:    doc.AuthorNames,
			URL:        openLibraryBaseURL + doc.Key,
			Languages:  doc.Language,
			Tags:       doc.Subject,
			Rating:     doc.RatingsAverage, // already on the 0-5 scale
		}
		if len(doc.ISBN) > 0 {
			rec.Identifiers = map[string]string{model.IdentifierISBN: doc.ISBN[0]}
		}
		if len(doc.Publisher) > 0 {
			rec.Publisher = doc.Publisher[0]
		}
		if doc.FirstPublishYear > 0 {
			rec.PublishedDate = fmt.Sprintf("%d", doc.FirstPublishYear)
		}
		if doc.CoverID > 0 {
			rec.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", openLibraryCovers, doc.CoverID)
		}
		records = append(records, rec)
	}
	return records, nil
}

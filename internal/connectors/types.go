package connectors

import (
	"context"
)

const KindNative = "native"

type SourceTag struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// CandidateStub is one release tile from a results page, before detail enrichment.
type CandidateStub struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	Cover  *string   `json:"cover,omitempty"`
	Source SourceTag `json:"source"`
}

type SeriesEntry struct {
	Series   string  `json:"series"`
	Sequence *string `json:"sequence,omitempty"`
}

// MetadataRecord is a CandidateStub enriched from its detail page. A record
// that could not be enriched carries only the stub fields.
type MetadataRecord struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	URL           string            `json:"url"`
	Cover         *string           `json:"cover,omitempty"`
	Source        SourceTag         `json:"source"`
	Narrator      *string           `json:"narrator,omitempty"`
	Authors       []string          `json:"authors,omitempty"`
	Duration      *string           `json:"duration,omitempty"`
	Type          *string           `json:"type,omitempty"`
	Description   *string           `json:"description,omitempty"`
	PublishedYear *string           `json:"publishedYear,omitempty"`
	Publisher     *string           `json:"publisher,omitempty"`
	Identifiers   map[string]string `json:"identifiers,omitempty"`
	Series        []SeriesEntry     `json:"series,omitempty"`
}

// RecordFromStub returns the unenriched form of a stub.
func RecordFromStub(stub CandidateStub) MetadataRecord {
	return MetadataRecord{
		ID:     stub.ID,
		Title:  stub.Title,
		URL:    stub.URL,
		Cover:  stub.Cover,
		Source: stub.Source,
	}
}

// Enriched reports whether any detail-page field was filled in.
func (r MetadataRecord) Enriched() bool {
	return r.Narrator != nil || len(r.Authors) > 0 || r.Duration != nil || r.Type != nil ||
		r.Description != nil || r.PublishedYear != nil || r.Publisher != nil ||
		len(r.Identifiers) > 0 || len(r.Series) > 0
}

type Connector interface {
	Key() string
	Name() string
	Kind() string
	HealthCheck(ctx context.Context) error
	Search(ctx context.Context, query string, author string) ([]MetadataRecord, error)
}

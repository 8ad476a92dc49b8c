package profile

import (
	"fmt"
	"net/url"
	"strings"
)

// Profile declares where a retailer lives and which selectors and labels its
// pages use.
type Profile struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"base_url"`
	Publisher  string `yaml:"publisher"`
	HealthPath string `yaml:"health_path"`
	Search     struct {
		URL        string            `yaml:"url"`
		Path       string            `yaml:"path"`
		QueryParam string            `yaml:"query_param"`
		Params     map[string]string `yaml:"params"`
	} `yaml:"search"`
	Results Results `yaml:"results"`
	Detail  Detail  `yaml:"detail"`
}

type Results struct {
	Tile   string `yaml:"tile"`
	Title  string `yaml:"title"`
	Link   string `yaml:"link"`
	Cover  string `yaml:"cover"`
	IDAttr string `yaml:"id_attr"`
}

type Detail struct {
	TabLinks      string `yaml:"tab_links"`
	CastTabLabel  string `yaml:"cast_tab_label"`
	TabContent    string `yaml:"tab_content"`
	CastItems     string `yaml:"cast_items"`
	Starring      string `yaml:"starring"`
	StarringLabel string `yaml:"starring_label"`
	Credits       string `yaml:"credits"`
	WrittenLabel  string `yaml:"written_label"`
	AdaptedLabel  string `yaml:"adapted_label"`
	ReleaseDate   string `yaml:"release_date"`
	LabelRows     string `yaml:"label_rows"`
	DurationLabel string `yaml:"duration_label"`
	FormatLabel   string `yaml:"format_label"`
	Article       string `yaml:"article"`
	Paragraph     string `yaml:"paragraph"`
	Emphasis      string `yaml:"emphasis"`
	NotePrefix    string `yaml:"note_prefix"`
	ReleaseTitle  string `yaml:"release_title"`
	SeriesHeading string `yaml:"series_heading"`
	Cover         string `yaml:"cover"`
}

func (p *Profile) normalizeAndValidate() error {
	p.Key = strings.TrimSpace(p.Key)
	p.Name = strings.TrimSpace(p.Name)
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	p.Search.URL = strings.TrimSpace(p.Search.URL)

	if p.Key == "" {
		return fmt.Errorf("key is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(p.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if p.Search.URL == "" && strings.TrimSpace(p.Search.Path) == "" {
		return fmt.Errorf("search.url or search.path is required")
	}

	if strings.TrimSpace(p.Search.QueryParam) == "" {
		p.Search.QueryParam = "q"
	}
	if strings.TrimSpace(p.HealthPath) == "" {
		p.HealthPath = "/"
	}
	if strings.TrimSpace(p.Publisher) == "" {
		p.Publisher = p.Name
	}

	if strings.TrimSpace(p.Results.Tile) == "" {
		return fmt.Errorf("results.tile is required")
	}
	if strings.TrimSpace(p.Results.Link) == "" {
		return fmt.Errorf("results.link is required")
	}
	if strings.TrimSpace(p.Detail.Article) == "" {
		return fmt.Errorf("detail.article is required")
	}

	defaultString(&p.Results.Title, ".title")
	defaultString(&p.Detail.Paragraph, "p")
	defaultString(&p.Detail.Emphasis, "strong")
	defaultString(&p.Detail.NotePrefix, "note")
	defaultString(&p.Detail.CastItems, "ul li")
	defaultString(&p.Detail.CastTabLabel, "Cast")
	defaultString(&p.Detail.StarringLabel, "starring")
	defaultString(&p.Detail.WrittenLabel, "Written by")
	defaultString(&p.Detail.AdaptedLabel, "Adapted by")
	defaultString(&p.Detail.DurationLabel, "Duration:")
	defaultString(&p.Detail.FormatLabel, "Product Format:")

	return nil
}

// SearchURL builds the results-page URL for a raw query.
func (p Profile) SearchURL(query string) string {
	endpoint := p.Search.URL
	if endpoint == "" {
		endpoint = p.BaseURL + ensurePathPrefix(p.Search.Path)
	}

	values := url.Values{}
	for key, value := range p.Search.Params {
		values.Set(key, value)
	}
	values.Set(p.Search.QueryParam, query)

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + values.Encode()
}

func (p Profile) HealthURL() string {
	return p.BaseURL + ensurePathPrefix(p.HealthPath)
}

// AbsoluteURL resolves root-relative and protocol-relative values against the
// profile's base origin.
func (p Profile) AbsoluteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "//") {
		return "https:" + trimmed
	}
	if strings.HasPrefix(trimmed, "/") {
		return p.BaseURL + trimmed
	}
	return p.BaseURL + "/" + trimmed
}

func ensurePathPrefix(rawPath string) string {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return ""
	}
	if strings.HasPrefix(rawPath, "/") {
		return rawPath
	}
	return "/" + rawPath
}

func defaultString(target *string, fallback string) {
	*target = strings.TrimSpace(*target)
	if *target == "" {
		*target = fallback
	}
}

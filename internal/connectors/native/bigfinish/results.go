package bigfinish

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
	"github.com/gabriel/bigfinish-metadata/internal/searchutil"
)

// ExtractResults turns a results page into candidate stubs in document order.
// Tiles without a usable link are logged and skipped.
func ExtractResults(doc *goquery.Document, p profile.Profile, stripTitle bool, logger *slog.Logger) []connectors.CandidateStub {
	if logger == nil {
		logger = slog.Default()
	}
	if doc == nil {
		return []connectors.CandidateStub{}
	}

	source := sourceTag(p)
	stubs := make([]connectors.CandidateStub, 0)

	doc.Find(p.Results.Tile).Each(func(_ int, tile *goquery.Selection) {
		titleNode := tile.Find(p.Results.Title)
		title := searchutil.NormalizeSpace(titleNode.Text())

		link := tile.Find(p.Results.Link)
		if link.Length() == 0 {
			logger.Warn("skipping result tile", "title", title, "reason", "missing link element")
			return
		}
		href, _ := link.Attr("href")
		if titleNode.Length() == 0 {
			logger.Warn("skipping result tile", "href", href, "reason", "missing title element")
			return
		}
		detailURL := p.AbsoluteURL(href)
		if detailURL == "" {
			logger.Warn("skipping result tile", "title", title, "reason", "missing href")
			return
		}

		stub := connectors.CandidateStub{
			ID:     tileID(tile, p.Results.IDAttr, detailURL),
			Title:  title,
			URL:    detailURL,
			Source: source,
		}
		if stripTitle {
			stub.Title = searchutil.AfterFirst(title, ":")
		}
		if p.Results.Cover != "" {
			if src, ok := tile.Find(p.Results.Cover).Attr("src"); ok {
				if cover := p.AbsoluteURL(src); cover != "" {
					stub.Cover = &cover
				}
			}
		}

		stubs = append(stubs, stub)
	})

	return stubs
}

func sourceTag(p profile.Profile) connectors.SourceTag {
	return connectors.SourceTag{ID: p.Key, Description: p.Name, Link: p.BaseURL}
}

func tileID(tile *goquery.Selection, idAttr string, detailURL string) string {
	if idAttr != "" {
		if id, ok := tile.Attr(idAttr); ok && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
	}
	return lastPathSegment(detailURL)
}

func lastPathSegment(rawURL string) string {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}
	path = strings.TrimRight(path, "/")
	if index := strings.LastIndex(path, "/"); index >= 0 {
		return path[index+1:]
	}
	return path
}

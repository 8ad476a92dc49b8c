package bigfinish

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
	"github.com/gabriel/bigfinish-metadata/internal/searchutil"
)

// disclaimerPattern matches the bold-marked "out of print" banner some pages carry.
var disclaimerPattern = regexp.MustCompile(`\*\*.*\*\*`)

var errDetailRootMissing = errors.New("detail article not found")

// requireDetailRoot rejects documents without the active-tab article, such as
// soft-404 and login pages served with a 2xx status.
func requireDetailRoot(doc *goquery.Document, p profile.Profile, pageURL string) error {
	if doc.Find(p.Detail.Article).Length() == 0 {
		return &ParseError{URL: pageURL, Err: errDetailRootMissing}
	}
	return nil
}

// AssembleDocument builds the enriched record for stub from its parsed detail
// page. It is pure: the same inputs always give the same record.
func AssembleDocument(doc *goquery.Document, stub connectors.CandidateStub, query string, p profile.Profile) connectors.MetadataRecord {
	d := p.Detail
	record := connectors.RecordFromStub(stub)

	releaseHeading := strings.TrimSpace(doc.Find(d.ReleaseTitle).Text())
	releaseTitle := releaseTitleOf(releaseHeading, stub.Title)

	record.Narrator = extractNarrators(doc, d)
	record.Authors = extractAuthors(doc, d)
	record.Duration = extractLabelled(doc, d.LabelRows, d.DurationLabel)
	record.Type = extractLabelled(doc, d.LabelRows, d.FormatLabel)
	record.PublishedYear = extractYear(doc, d)
	record.Cover = extractCover(doc, p, stub.Cover)

	var description string
	story, matched := MatchStory(doc, d, query)
	if matched {
		description = story.Description
		title, authors := story.SplitTitle()
		if title != "" {
			record.Title = title
		}
		if len(authors) > 0 {
			record.Authors = authors
		}
	} else {
		description = strings.TrimSpace(doc.Find(d.Article).Text())
	}
	record.Description = optional(stripDisclaimer(description))

	var matchedStory *StoryMatch
	if matched {
		matchedStory = &story
	}
	record.Series = ResolveSeries(SeriesInput{
		SeriesHeading:  doc.Find(d.SeriesHeading).Text(),
		ReleaseHeading: releaseHeading,
		Story:          matchedStory,
		StorySeries:    releaseTitle,
	})

	record.Publisher = optional(p.Publisher)
	record.Identifiers = map[string]string{p.Key: stub.ID}

	return record
}

// releaseTitleOf returns the release heading after its franchise prefix
// ("1. Doctor Who: Zagreus" -> "Zagreus"), or fallback when there is none.
func releaseTitleOf(heading string, fallback string) string {
	if _, rest, found := strings.Cut(heading, ":"); found {
		if title := strings.TrimSpace(rest); title != "" {
			return title
		}
	}
	return strings.TrimSpace(fallback)
}

func extractNarrators(doc *goquery.Document, d profile.Detail) *string {
	if names := castTabNames(doc, d); len(names) > 0 {
		return optional(strings.Join(names, ", "))
	}

	names := doc.Find(d.Starring).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return searchutil.ContainsFold(s.Text(), d.StarringLabel)
		}).
		Find("a").
		Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	return optional(strings.Join(searchutil.NonEmpty(names), ", "))
}

func castTabNames(doc *goquery.Document, d profile.Detail) []string {
	href, ok := doc.Find(d.TabLinks).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) == d.CastTabLabel
		}).
		First().
		Attr("href")
	href = strings.TrimSpace(href)
	if !ok || !strings.HasPrefix(href, "#") || len(href) < 2 {
		return nil
	}

	content := doc.Find(href).Closest(d.TabContent)
	if content.Length() == 0 {
		return nil
	}

	names := content.Find(d.CastItems).Map(func(_ int, li *goquery.Selection) string {
		return li.Find("a").Text()
	})
	return searchutil.NonEmpty(names)
}

// extractAuthors reads "Written by" then "Adapted by" credits. Names come from
// the link's title attribute; the visible text is used when that is missing.
func extractAuthors(doc *goquery.Document, d profile.Detail) []string {
	var authors []string
	for _, label := range []string{d.WrittenLabel, d.AdaptedLabel} {
		doc.Find(d.Credits).
			FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(s.Text(), label)
			}).
			Find("a").
			Each(func(_ int, a *goquery.Selection) {
				name, ok := a.Attr("title")
				if !ok || strings.TrimSpace(name) == "" {
					name = a.Text()
				}
				if name = strings.TrimSpace(name); name != "" {
					authors = append(authors, name)
				}
			})
	}
	return authors
}

func extractLabelled(doc *goquery.Document, rowSelector string, label string) *string {
	text := doc.Find(rowSelector).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), label)
		}).
		Text()
	return optional(strings.Replace(text, label, "", 1))
}

func extractYear(doc *goquery.Document, d profile.Detail) *string {
	year, ok := searchutil.FirstYear(strings.TrimSpace(doc.Find(d.ReleaseDate).Text()))
	if !ok {
		return nil
	}
	return &year
}

func extractCover(doc *goquery.Document, p profile.Profile, fallback *string) *string {
	if src, ok := doc.Find(p.Detail.Cover).First().Attr("src"); ok {
		if cover := p.AbsoluteURL(src); cover != "" {
			return &cover
		}
	}
	return fallback
}

func stripDisclaimer(description string) string {
	if loc := disclaimerPattern.FindStringIndex(description); loc != nil {
		description = description[:loc[0]] + description[loc[1]:]
	}
	return description
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package bigfinish

import (
	"strconv"
	"strings"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/searchutil"
)

// SeriesInput carries the raw headings the resolver works from. Story is nil
// when no bundled story matched; StorySeries names the series the matched
// story is indexed under.
type SeriesInput struct {
	SeriesHeading  string
	ReleaseHeading string
	Story          *StoryMatch
	StorySeries    string
}

// ResolveSeries infers (series, sequence) pairs from a release's headings.
// Entries from the release numbering come first, then the matched story's own entry.
func ResolveSeries(in SeriesInput) []connectors.SeriesEntry {
	entries := make([]connectors.SeriesEntry, 0, 3)

	series := normalizeSeriesName(in.SeriesHeading)
	releaseHeading := strings.TrimSpace(in.ReleaseHeading)
	parts := searchutil.DotParts(searchutil.FirstField(releaseHeading))

	if series != "" {
		if len(parts) == 2 {
			if !strings.HasSuffix(series, parts[0]) {
				entries = append(entries,
					connectors.SeriesEntry{Series: series + " - Volume " + parts[0], Sequence: intSequence(parts[1])},
					connectors.SeriesEntry{Series: series, Sequence: stringPtr(strings.Join(parts, "."))},
				)
			}
		} else if _, trailing := searchutil.ParseLeadingInt(searchutil.LastField(releaseHeading)); trailing {
			// A trailing numeral ("... 2021") makes the leading one ambiguous.
			entries = append(entries, connectors.SeriesEntry{Series: series})
		} else {
			var sequence *string
			if len(parts) > 0 {
				sequence = intSequence(parts[0])
			}
			entries = append(entries, connectors.SeriesEntry{Series: series, Sequence: sequence})
		}
	}

	if in.Story != nil {
		name := strings.TrimSpace(in.StorySeries)
		if name != "" {
			entries = append(entries, connectors.SeriesEntry{Series: name, Sequence: storySequence(in.Story.Title)})
		}
	}

	return entries
}

// normalizeSeriesName drops a leading category label ("Doctor Who - Main Range" -> "Main Range").
func normalizeSeriesName(heading string) string {
	return searchutil.AfterFirst(strings.TrimSpace(heading), " - ")
}

func storySequence(storyTitle string) *string {
	subparts := searchutil.DotParts(searchutil.FirstField(strings.TrimSpace(storyTitle)))
	if len(subparts) > 1 {
		if sequence := intSequence(subparts[1]); sequence != nil {
			return sequence
		}
	}
	if len(subparts) > 0 {
		return intSequence(subparts[0])
	}
	return nil
}

func intSequence(raw string) *string {
	parsed, ok := searchutil.ParseLeadingInt(raw)
	if !ok {
		return nil
	}
	return stringPtr(strconv.Itoa(parsed))
}

func stringPtr(value string) *string {
	return &value
}

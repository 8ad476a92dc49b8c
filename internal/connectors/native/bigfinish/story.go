package bigfinish

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
	"github.com/gabriel/bigfinish-metadata/internal/searchutil"
)

// StoryMatch is one bundled story on a detail page whose heading matched the query.
type StoryMatch struct {
	Title       string
	Description string
}

// paragraph is one paragraph of the active tab, reduced to what the walk needs.
type paragraph struct {
	Text       string
	Lead       string
	LeadInLink bool
}

func articleParagraphs(doc *goquery.Document, d profile.Detail) []paragraph {
	out := make([]paragraph, 0)
	doc.Find(d.Article).Find(d.Paragraph).Each(func(_ int, p *goquery.Selection) {
		lead := p.Find(d.Emphasis)
		out = append(out, paragraph{
			Text:       strings.TrimSpace(p.Text()),
			Lead:       strings.TrimSpace(lead.Text()),
			LeadInLink: lead.Parent().Is("a"),
		})
	})
	return out
}

type walkState int

const (
	stateNoActive walkState = iota
	stateActive
)

type storyWalk struct {
	query      string
	notePrefix string

	state  walkState
	open   *StoryMatch
	parts  []string
	closed bool
}

func (w *storyWalk) step(p paragraph) {
	if p.Lead == "" {
		if w.state == stateActive && p.Text != "" {
			w.parts = append(w.parts, p.Text)
		}
		return
	}

	if searchutil.HasPrefixFold(p.Lead, w.notePrefix) {
		return
	}

	if w.state == stateActive {
		w.close()
	}

	if !p.LeadInLink && searchutil.ContainsFold(p.Lead, w.query) {
		w.open = &StoryMatch{Title: p.Lead}
		w.parts = nil
		w.closed = false
		w.state = stateActive
		return
	}
	w.state = stateNoActive
}

func (w *storyWalk) close() {
	if w.open != nil && !w.closed {
		w.open.Description = strings.Join(w.parts, " ")
		w.closed = true
	}
}

// finish returns the last opened story, provided its title still matches.
func (w *storyWalk) finish() (StoryMatch, bool) {
	w.close()
	if w.open == nil || !searchutil.ContainsFold(w.open.Title, w.query) {
		return StoryMatch{}, false
	}
	return *w.open, true
}

func matchStory(paragraphs []paragraph, query string, notePrefix string) (StoryMatch, bool) {
	if strings.TrimSpace(query) == "" {
		return StoryMatch{}, false
	}
	walk := storyWalk{query: query, notePrefix: notePrefix}
	for _, p := range paragraphs {
		walk.step(p)
	}
	return walk.finish()
}

// MatchStory finds the bundled story in the active tab whose heading contains query.
func MatchStory(doc *goquery.Document, d profile.Detail, query string) (StoryMatch, bool) {
	return matchStory(articleParagraphs(doc, d), query, d.NotePrefix)
}

// SplitTitle separates a story heading such as "2.1 Fallen Angels by Phil Mulryne, Joseph Lidster"
// into its display title and credited authors. The split is on the last " by ",
// so titles like "Stand by Me" survive. The leading numbering token is dropped.
func (m StoryMatch) SplitTitle() (string, []string) {
	left := m.Title

	var authors []string
	if index := strings.LastIndex(m.Title, " by "); index >= 0 {
		left = m.Title[:index]
		authors = searchutil.NonEmpty(strings.Split(m.Title[index+len(" by "):], ","))
	}

	_, title, _ := strings.Cut(left, " ")
	return strings.TrimSpace(title), authors
}

package bigfinish

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
)

const anthologyDetailHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="detail-page-image"><img src="/image/release/1315/large.jpg" /></div>
	<div class="product-desc">
		<h6>Doctor Who - Classic Doctors, New Monsters</h6>
		<h3>1. Doctor Who: Classic Doctors New Monsters Volume 01</h3>
		<ul>
			<li class="comma-seperate-links">Written by: <a href="/writers/1" title="Phil Mulryne">P. Mulryne</a>, <a href="/writers/2" title="Andrew Smith">A. Smith</a></li>
			<li class="comma-seperate-links">Adapted by: <a href="/writers/3" title="Nicholas Briggs">N. Briggs</a></li>
			<li class="no-line">Duration: 300 minutes approx.</li>
			<li class="no-line">Product Format: Audio CD</li>
		</ul>
		<div class="release-date">Released July 2016</div>
	</div>
	<div id="tabs">
		<ul>
			<li><a href="#tab1">About</a></li>
			<li><a href="#tab5">Cast</a></li>
		</ul>
		<div class="tab-content active" id="tab1">
			<article>
				<p><strong>Note: recording dates were in 2015</strong></p>
				<p>An anthology of four adventures. **This title is out of print**</p>
				<p><strong>1.1 Fallen Angels by Phil Mulryne</strong></p>
				<p>Michelangelo's Rome, 1511.</p>
				<p>The Weeping Angels are here.</p>
				<p><strong>1.2 Judoon in Chains by Andrew Smith</strong></p>
				<p>The Judoon are coming.</p>
				<p><a href="/releases/v/fallen-angels-audiobook"><strong>See also: Fallen Angels audiobook</strong></a></p>
			</article>
		</div>
		<div class="tab-content" id="tab5">
			<ul>
				<li><a href="/cast/1">Peter Davison</a></li>
				<li><a href="/cast/2">Sarah Sutton</a></li>
				<li>Uncredited voice</li>
			</ul>
		</div>
	</div>
</body>
</html>`

const volumeDetailHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="product-desc">
		<h6>Big Finish - Dark Shadows</h6>
		<h3>2.3 Dark Shadows: The Foo</h3>
		<ul>
			<li class="comma-seperate-links">Starring: <a href="/cast/9">Paul McGann</a>, <a href="/cast/10">India Fisher</a></li>
			<li class="comma-seperate-links">Written by: <a href="/writers/7">Joseph Lidster</a></li>
			<li class="no-line">Duration:</li>
		</ul>
		<div class="release-date">Coming soon</div>
	</div>
	<div class="tab-content active"><article><p>Collinsport is restless.</p></article></div>
</body>
</html>`

const bareDetailHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="product-desc">
		<h6>MySeries</h6>
		<h3>7 The Finale 2021</h3>
	</div>
	<div class="tab-content active"><article><p>The end of everything.</p></article></div>
</body>
</html>`

const resultsHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="grid-box" data-item-id="216">
		<div class="grid-pict"><img src="/image/release/216/thumb.jpg" /></div>
		<div class="grid-content"><h3 class="title"><a href="/releases/v/doctor-who-zagreus-216">Doctor Who: Zagreus</a></h3></div>
	</div>
	<div class="grid-box">
		<div class="grid-content"><h3 class="title">Doctor Who: Lost Tile</h3></div>
	</div>
	<div class="grid-box">
		<div class="grid-content"><h3 class="title"><a href="/releases/v/doctor-who-power-play-417">Doctor Who: Power Play</a></h3></div>
	</div>
	<div class="grid-box" data-item-id="">
		<div class="grid-content"><h3 class="title"><a href="https://www.bigfinish.com/releases/v/dalek-empire-the-exterminators-353/">Dalek Empire: The Exterminators</a></h3></div>
	</div>
</body>
</html>`

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func mustProfile(t *testing.T) profile.Profile {
	t.Helper()
	p, err := profile.Default()
	if err != nil {
		t.Fatalf("load default profile: %v", err)
	}
	return p
}

// fakeFetcher serves fixture pages by URL; unknown URLs fail like a 404.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	html, ok := f.pages[pageURL]
	f.mu.Unlock()

	if !ok {
		return nil, &FetchError{URL: pageURL, StatusCode: 404}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}
	return doc, nil
}

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count(level slog.Level, message string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			total++
		}
	}
	return total
}

var errBoom = errors.New("boom")

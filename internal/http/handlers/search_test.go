package handlers_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	apihttp "github.com/gabriel/bigfinish-metadata/internal/http"
)

func sampleRecords() []connectors.MetadataRecord {
	narrator := "Peter Davison, Sarah Sutton"
	sequence := "1"
	return []connectors.MetadataRecord{
		{
			ID:          "1315",
			Title:       "Fallen Angels",
			URL:         "https://www.bigfinish.com/releases/v/cdnm-1315",
			Source:      connectors.SourceTag{ID: "bigfinish", Description: "BigFinish", Link: "https://www.bigfinish.com"},
			Narrator:    &narrator,
			Authors:     []string{"Phil Mulryne"},
			Identifiers: map[string]string{"bigfinish": "1315"},
			Series: []connectors.SeriesEntry{
				{Series: "Classic Doctors, New Monsters"},
				{Series: "Classic Doctors New Monsters Volume 01", Sequence: &sequence},
			},
		},
		{
			ID:     "13",
			Title:  "Doctor Who: Broken",
			URL:    "https://www.bigfinish.com/releases/v/broken-13",
			Source: connectors.SourceTag{ID: "bigfinish", Description: "BigFinish", Link: "https://www.bigfinish.com"},
		},
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	app := setupTestApp(t, config.Config{}, &fakeConnector{key: "bigfinish"})

	for _, target := range []string{"/search", "/search?query=", "/search?query=%20%20"} {
		res, body := get(t, app, target)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, res.StatusCode)
		}
		if got := decodeObject(t, body)["error"]; got != "Query parameter is required" {
			t.Fatalf("%s: unexpected error %v", target, got)
		}
	}
}

func TestSearchReturnsMatches(t *testing.T) {
	connector := &fakeConnector{key: "bigfinish", records: sampleRecords()}
	app := setupTestApp(t, config.Config{}, connector)

	res, body := get(t, app, "/search?query=fallen+angels&author=Phil+Mulryne")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, body)
	}

	matches, ok := decodeObject(t, body)["matches"].([]any)
	if !ok || len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %s", body)
	}

	first := matches[0].(map[string]any)
	if first["title"] != "Fallen Angels" || first["narrator"] != "Peter Davison, Sarah Sutton" {
		t.Fatalf("unexpected first match %v", first)
	}
	if _, present := first["duration"]; present {
		t.Fatalf("expected absent duration to be omitted, got %v", first["duration"])
	}
	series := first["series"].([]any)
	if _, present := series[0].(map[string]any)["sequence"]; present {
		t.Fatalf("expected nil sequence to be omitted, got %v", series[0])
	}
	if series[1].(map[string]any)["sequence"] != "1" {
		t.Fatalf("expected sequence 1, got %v", series[1])
	}

	second := matches[1].(map[string]any)
	for _, key := range []string{"narrator", "authors", "identifiers", "series", "publisher"} {
		if _, present := second[key]; present {
			t.Fatalf("expected stub-only record to omit %s, got %v", key, second)
		}
	}

	if connector.queries[0] != "fallen angels" || connector.authors[0] != "Phil Mulryne" {
		t.Fatalf("expected query and author to be forwarded, got %v %v", connector.queries, connector.authors)
	}
}

func TestSearchEmptyMatchesIsArray(t *testing.T) {
	app := setupTestApp(t, config.Config{}, &fakeConnector{key: "bigfinish"})

	res, body := get(t, app, "/search?query=nothing")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if !strings.Contains(string(body), `"matches":[]`) {
		t.Fatalf("expected an empty matches array, got %s", body)
	}
}

func TestSearchUnexpectedFailures(t *testing.T) {
	cases := map[string]*fakeConnector{
		"error": {key: "bigfinish", err: errors.New("orchestration broke")},
		"panic": {key: "bigfinish", panics: true},
	}

	for name, connector := range cases {
		app := setupTestApp(t, config.Config{}, connector)

		res, body := get(t, app, "/search?query=zagreus")
		if res.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", name, res.StatusCode)
		}
		if got := decodeObject(t, body)["error"]; got != "Internal server error" {
			t.Fatalf("%s: unexpected error %v", name, got)
		}
	}
}

func TestSearchFailureLogsThroughInjectedLogger(t *testing.T) {
	var logs bytes.Buffer
	registry := connectors.NewRegistry()
	if err := registry.Register(&fakeConnector{key: "bigfinish", err: errors.New("orchestration broke")}); err != nil {
		t.Fatalf("register connector: %v", err)
	}
	app := apihttp.NewServerWithLogger(config.Config{AppName: "test-app"}, registry, slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	res, _ := get(t, app, "/search?query=zagreus")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
	if !strings.Contains(logs.String(), `"msg":"request failed"`) || !strings.Contains(logs.String(), "orchestration broke") {
		t.Fatalf("expected the failure on the injected logger, got %q", logs.String())
	}
}

func TestSearchSourceSelection(t *testing.T) {
	primary := &fakeConnector{key: "bigfinish", records: sampleRecords()}
	mirror := &fakeConnector{key: "mirror"}
	app := setupTestApp(t, config.Config{}, primary, mirror)

	res, _ := get(t, app, "/v1/search?query=zagreus&source=https://mirror.example.com/releases")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if len(mirror.queries) != 1 || len(primary.queries) != 0 {
		t.Fatalf("expected the mirror connector to be selected, got primary=%v mirror=%v", primary.queries, mirror.queries)
	}

	res, body := get(t, app, "/search?query=zagreus&source=unknown")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown source, got %d", res.StatusCode)
	}
	if got := decodeObject(t, body)["error"]; got != "Unknown source" {
		t.Fatalf("unexpected error %v", got)
	}
}

package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	apihttp "github.com/gabriel/bigfinish-metadata/internal/http"
	"github.com/gofiber/fiber/v2"
)

type fakeConnector struct {
	key     string
	records []connectors.MetadataRecord
	err     error
	panics  bool

	mu      sync.Mutex
	queries []string
	authors []string
}

func (f *fakeConnector) Key() string                       { return f.key }
func (f *fakeConnector) Name() string                      { return "Fake " + f.key }
func (f *fakeConnector) Kind() string                      { return connectors.KindNative }
func (f *fakeConnector) HealthCheck(context.Context) error { return nil }

func (f *fakeConnector) Search(_ context.Context, query string, author string) ([]connectors.MetadataRecord, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.authors = append(f.authors, author)
	f.mu.Unlock()

	if f.panics {
		panic("extractor exploded")
	}
	return f.records, f.err
}

func setupTestApp(t *testing.T, cfg config.Config, connectorList ...connectors.Connector) *fiber.App {
	t.Helper()

	registry := connectors.NewRegistry()
	for _, connector := range connectorList {
		if err := registry.Register(connector); err != nil {
			t.Fatalf("register %s: %v", connector.Key(), err)
		}
	}

	if cfg.AppName == "" {
		cfg.AppName = "test-app"
	}
	app := apihttp.NewServer(cfg, registry)
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, body
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	return doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func decodeObject(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode payload %q: %v", string(body), err)
	}
	return payload
}

package bigfinish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
	"github.com/gabriel/bigfinish-metadata/internal/metrics"
)

var ErrQueryRequired = errors.New("query is required")

type Options struct {
	StripTitle     bool
	DetailTimeout  time.Duration
	MaxConcurrency int
	Logger         *slog.Logger
}

type Connector struct {
	profile        profile.Profile
	fetcher        Fetcher
	stripTitle     bool
	detailTimeout  time.Duration
	maxConcurrency int64
	logger         *slog.Logger
}

func NewConnector(p profile.Profile, fetcher Fetcher, opts Options) *Connector {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil)
	}
	if opts.DetailTimeout <= 0 {
		opts.DetailTimeout = 15 * time.Second
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Connector{
		profile:        p,
		fetcher:        fetcher,
		stripTitle:     opts.StripTitle,
		detailTimeout:  opts.DetailTimeout,
		maxConcurrency: int64(opts.MaxConcurrency),
		logger:         opts.Logger,
	}
}

func (c *Connector) Key() string {
	return c.profile.Key
}

func (c *Connector) Name() string {
	return c.profile.Name
}

func (c *Connector) Kind() string {
	return connectors.KindNative
}

func (c *Connector) HealthCheck(ctx context.Context) error {
	if _, err := c.fetcher.Fetch(ctx, c.profile.HealthURL()); err != nil {
		return err
	}
	return nil
}

// candidates fetches the results page for query. A failed fetch yields an
// empty list alongside the error.
func (c *Connector) candidates(ctx context.Context, query string) ([]connectors.CandidateStub, error) {
	searchURL := c.profile.SearchURL(query)
	doc, err := c.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		c.logger.Error("results page failed", "query", query, "url", searchURL, "error", err)
		return []connectors.CandidateStub{}, err
	}
	return ExtractResults(doc, c.profile, c.stripTitle, c.logger), nil
}

// Search lists candidates for query and enriches each from its detail page.
// Detail pages are fetched concurrently; the output keeps results-page order.
// author is accepted for API compatibility and does not filter.
func (c *Connector) Search(ctx context.Context, query string, author string) ([]connectors.MetadataRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	started := time.Now()
	defer func() { metrics.ObserveSearch(time.Since(started)) }()

	c.logger.Info("searching", "query", query, "author", author)

	stubs, err := c.candidates(ctx, query)
	if err != nil {
		metrics.IncSearch(metrics.OutcomeFailed)
		return []connectors.MetadataRecord{}, nil
	}
	metrics.AddCandidates(len(stubs))

	records := make([]connectors.MetadataRecord, len(stubs))
	sem := semaphore.NewWeighted(c.maxConcurrency)
	var wg sync.WaitGroup

	for index, stub := range stubs {
		wg.Add(1)
		go func(index int, stub connectors.CandidateStub) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				c.fallback(stub, metrics.StageTimeout, err)
				records[index] = connectors.RecordFromStub(stub)
				return
			}
			defer sem.Release(1)

			detailCtx, cancel := context.WithTimeout(ctx, c.detailTimeout)
			defer cancel()
			records[index] = c.Assemble(detailCtx, stub, query)
		}(index, stub)
	}
	wg.Wait()

	if len(records) == 0 {
		metrics.IncSearch(metrics.OutcomeEmpty)
	} else {
		metrics.IncSearch(metrics.OutcomeOK)
	}

	return records, nil
}

// Assemble enriches one stub from its detail page. Every failure, including a
// panic during extraction, degrades to the stub itself.
func (c *Connector) Assemble(ctx context.Context, stub connectors.CandidateStub, query string) (record connectors.MetadataRecord) {
	defer func() {
		if recovered := recover(); recovered != nil {
			c.fallback(stub, metrics.StagePanic, fmt.Errorf("panic: %v", recovered))
			record = connectors.RecordFromStub(stub)
		}
	}()

	doc, err := c.fetcher.Fetch(ctx, stub.URL)
	if err != nil {
		c.fallback(stub, fallbackStage(ctx, err), err)
		return connectors.RecordFromStub(stub)
	}
	if err := requireDetailRoot(doc, c.profile, stub.URL); err != nil {
		c.fallback(stub, metrics.StageParse, err)
		return connectors.RecordFromStub(stub)
	}

	return AssembleDocument(doc, stub, query, c.profile)
}

// Detail enriches a single detail page that did not come from a results page.
// Unlike Assemble it reports fetch failures instead of degrading.
func (c *Connector) Detail(ctx context.Context, pageURL string, query string) (connectors.MetadataRecord, error) {
	pageURL = c.profile.AbsoluteURL(pageURL)
	if pageURL == "" {
		return connectors.MetadataRecord{}, errors.New("detail url is required")
	}

	doc, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return connectors.MetadataRecord{}, err
	}
	if err := requireDetailRoot(doc, c.profile, pageURL); err != nil {
		return connectors.MetadataRecord{}, err
	}

	stub := connectors.CandidateStub{
		ID:     lastPathSegment(pageURL),
		Title:  strings.TrimSpace(doc.Find(c.profile.Detail.ReleaseTitle).First().Text()),
		URL:    pageURL,
		Source: sourceTag(c.profile),
	}
	return AssembleDocument(doc, stub, strings.TrimSpace(query), c.profile), nil
}

func (c *Connector) fallback(stub connectors.CandidateStub, stage string, err error) {
	metrics.IncDetailFallback(stage)
	c.logger.Warn("detail page fallback to stub", "id", stub.ID, "url", stub.URL, "stage", stage, "error", err)
}

func fallbackStage(ctx context.Context, err error) string {
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		return metrics.StageParse
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return metrics.StageTimeout
	default:
		return metrics.StageFetch
	}
}

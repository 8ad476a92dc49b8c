package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gabriel/bigfinish-metadata/internal/metrics"
)

type healthSource interface {
	Health(ctx context.Context) []connectors.HealthStatus
}

// Prober periodically health-checks every registered connector and publishes
// the result as the connector_up gauge.
type Prober struct {
	registry healthSource
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

type ProberConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

func NewProber(registry healthSource, cfg ProberConfig, logger *slog.Logger) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Prober{
		registry: registry,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (p *Prober) Start(ctx context.Context) {
	p.logger.Info("health prober started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		p.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("health prober stopped")
				close(p.stopCh)
				return
			case <-ticker.C:
				p.RunOnce(ctx)
			}
		}
	}()
}

func (p *Prober) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-p.stopCh:
	case <-time.After(timeout):
	}
}

// RunOnce probes every connector and returns how many were healthy.
func (p *Prober) RunOnce(ctx context.Context) int {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	healthy := 0
	for _, status := range p.registry.Health(probeCtx) {
		metrics.SetConnectorUp(status.Key, status.Healthy)
		if !status.Healthy {
			p.logger.Warn("connector health probe failed", "connector", status.Key, "error", status.Error)
			continue
		}
		healthy++
	}
	return healthy
}

package metrics

import (
	"context"
	"time"

	"grimm.is/rtlink/internal/logging"
)

// LinkCount is the number of links sharing a kind and operational state.
type LinkCount struct {
	Kind      string
	OperState string
	Count     int
}

// SourceFunc reports the current link inventory.
type SourceFunc func(ctx context.Context) ([]LinkCount, error)

// Collector periodically refreshes the link inventory gauge.
type Collector struct {
	registry *Registry
	source   SourceFunc
	logger   *logging.Logger
	interval time.Duration
}

// NewCollector creates a collector that polls source every interval.
func NewCollector(registry *Registry, source SourceFunc, logger *logging.Logger, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = logging.WithComponent("metrics")
	}
	return &Collector{
		registry: registry,
		source:   source,
		logger:   logger,
		interval: interval,
	}
}

// Run collects immediately and then on every tick until ctx is done.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.Collect(ctx); err != nil {
			c.logger.Warn("link inventory collection failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Collect runs one poll and replaces the gauge contents.
func (c *Collector) Collect(ctx context.Context) error {
	counts, err := c.source(ctx)
	if err != nil {
		return err
	}

	c.registry.Links.Reset()
	for _, lc := range counts {
		c.registry.Links.WithLabelValues(lc.Kind, lc.OperState).Set(float64(lc.Count))
	}
	return nil
}

// Package metrics exposes engine and tier statistics to Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/hybrid"
)

// Namespace prefixes every metric name.
const Namespace = "holicache"

// DefaultScrapeTimeout bounds how long one scrape waits for the local tier.
const DefaultScrapeTimeout = 5 * time.Second

// StatusSource is what the collector reads on each scrape.
// *hybrid.Engine satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (hybrid.Status, error)
}

// Collector reports engine counters, remote health and tier sizes. Values are
// read at scrape time so nothing is duplicated between the engine and the
// registry.
type Collector struct {
	source  StatusSource
	logger  *zerolog.Logger
	timeout time.Duration

	lookups         *prometheus.Desc
	errors          *prometheus.Desc
	remoteUp        *prometheus.Desc
	remoteLastCheck *prometheus.Desc
	localEntries    *prometheus.Desc
	localModified   *prometheus.Desc
	memoryRequests  *prometheus.Desc
	memoryKeys      *prometheus.Desc
	memoryBytes     *prometheus.Desc
	memoryEvictions *prometheus.Desc
	scrapeErrors    prometheus.Counter
}

// NewCollector creates a Collector over source.
func NewCollector(source StatusSource, logger *zerolog.Logger) *Collector {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), help, labels, nil)
	}
	return &Collector{
		source:  source,
		logger:  logger,
		timeout: DefaultScrapeTimeout,

		lookups:         desc("lookups_total", "Description lookups by the tier that answered them.", "tier"),
		errors:          desc("remote_errors_total", "Remote reads that failed after all retries."),
		remoteUp:        desc("remote_available", "Whether the remote store was reachable at the last check."),
		remoteLastCheck: desc("remote_last_check_timestamp_seconds", "Unix time of the last remote reachability check."),
		localEntries:    desc("local_entries", "Records in the local tier."),
		localModified:   desc("local_last_modified_timestamp_seconds", "Unix time the local tier was last written."),
		memoryRequests:  desc("memory_requests_total", "Memory tier lookups by result.", "result"),
		memoryKeys:      desc("memory_keys", "Records held in the memory tier."),
		memoryBytes:     desc("memory_bytes", "Approximate bytes held in the memory tier."),
		memoryEvictions: desc("memory_evictions_total", "Records evicted from the memory tier."),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scrape_errors_total",
			Help:      "Scrapes that could not read the engine status.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lookups
	ch <- c.errors
	ch <- c.remoteUp
	ch <- c.remoteLastCheck
	ch <- c.localEntries
	ch <- c.localModified
	ch <- c.memoryRequests
	ch <- c.memoryKeys
	ch <- c.memoryBytes
	ch <- c.memoryEvictions
	c.scrapeErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	status, err := c.source.Status(ctx)
	if err != nil {
		c.scrapeErrors.Inc()
		c.logger.Warn().Err(err).Msg("metrics scrape could not read status")
	}
	c.scrapeErrors.Collect(ch)

	h := status.Hybrid
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(h.SupabaseHits), "remote")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(h.LocalHits), "local")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(h.MemoryHits), "memory")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(h.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(h.Errors))
	ch <- prometheus.MustNewConstMetric(c.remoteUp, prometheus.GaugeValue, boolFloat(h.IsSupabaseAvailable))
	ch <- prometheus.MustNewConstMetric(c.remoteLastCheck, prometheus.GaugeValue, unixSeconds(h.LastSupabaseCheck))

	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.localEntries, prometheus.GaugeValue, float64(status.Local.TotalEntries))
		ch <- prometheus.MustNewConstMetric(c.localModified, prometheus.GaugeValue, unixSeconds(status.Local.LastModified))
	}

	if m := status.Memory; m != nil {
		ch <- prometheus.MustNewConstMetric(c.memoryRequests, prometheus.CounterValue, float64(m.Hits), "hit")
		ch <- prometheus.MustNewConstMetric(c.memoryRequests, prometheus.CounterValue, float64(m.Misses), "miss")
		ch <- prometheus.MustNewConstMetric(c.memoryKeys, prometheus.GaugeValue, float64(m.KeyCount))
		ch <- prometheus.MustNewConstMetric(c.memoryBytes, prometheus.GaugeValue, float64(m.BytesUsed))
		ch <- prometheus.MustNewConstMetric(c.memoryEvictions, prometheus.CounterValue, float64(m.Evictions))
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

var _ prometheus.Collector = (*Collector)(nil)

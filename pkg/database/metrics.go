package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exposes pgx pool statistics as Prometheus metrics.
type PoolStatsCollector struct {
	pool *pgxpool.Pool

	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
	totalConns    *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquire  *prometheus.Desc
}

// NewPoolStatsCollector creates a collector for the given pool, labelled by
// database name.
func NewPoolStatsCollector(pool *pgxpool.Pool, dbName string) *PoolStatsCollector {
	labels := prometheus.Labels{"db": dbName}
	return &PoolStatsCollector{
		pool: pool,
		acquiredConns: prometheus.NewDesc(
			"pgx_pool_acquired_conns", "Connections currently acquired from the pool.", nil, labels),
		idleConns: prometheus.NewDesc(
			"pgx_pool_idle_conns", "Idle connections in the pool.", nil, labels),
		totalConns: prometheus.NewDesc(
			"pgx_pool_total_conns", "Total connections in the pool.", nil, labels),
		maxConns: prometheus.NewDesc(
			"pgx_pool_max_conns", "Maximum pool size.", nil, labels),
		acquireCount: prometheus.NewDesc(
			"pgx_pool_acquire_count_total", "Cumulative successful acquires.", nil, labels),
		emptyAcquire: prometheus.NewDesc(
			"pgx_pool_empty_acquire_count_total", "Acquires that waited for a free connection.", nil, labels),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquire
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stats.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stats.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stats.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stats.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stats.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(stats.EmptyAcquireCount()))
}

// RegisterPoolMetrics registers the pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, dbName string) error {
	return prometheus.Register(NewPoolStatsCollector(pool, dbName))
}

package metric

import "github.com/prometheus/client_golang/prometheus"

// StatusSource reports live cluster state. Implemented by the cluster
// server; kept as an interface so this package stays free of cluster
// dependencies.
type StatusSource interface {
	MemberCount() int
	IsLeader() bool
	IsActive() bool
}

// StatusCollector exports cluster state gauges at scrape time instead of
// tracking them with callbacks. One instance is registered per process.
type StatusCollector struct {
	source StatusSource

	members *prometheus.Desc
	leader  *prometheus.Desc
	active  *prometheus.Desc
}

// NewStatusCollector creates a collector reading from source on every scrape.
func NewStatusCollector(source StatusSource) *StatusCollector {
	return &StatusCollector{
		source: source,
		members: prometheus.NewDesc(
			namespace+"_cluster_members",
			"Nodes currently visible in the gossip membership.",
			nil, nil,
		),
		leader: prometheus.NewDesc(
			namespace+"_cluster_leader",
			"Whether this node is the consensus leader (1) or not (0).",
			nil, nil,
		),
		active: prometheus.NewDesc(
			namespace+"_cluster_active",
			"Whether the cluster is activated (1) or not (0).",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.members
	ch <- c.leader
	ch <- c.active
}

// Collect implements prometheus.Collector.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.members, prometheus.GaugeValue, float64(c.source.MemberCount()))
	ch <- prometheus.MustNewConstMetric(c.leader, prometheus.GaugeValue, boolValue(c.source.IsLeader()))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, boolValue(c.source.IsActive()))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

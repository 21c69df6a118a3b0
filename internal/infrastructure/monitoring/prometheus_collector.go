package monitoring

import (
	"huddle/internal/core/services"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exposes the in-process metrics service to the
// scrape endpoint. It implements prometheus.Collector by snapshotting
// the counters on every scrape, so the service stays free of registry
// state and tests can use it directly.
type PrometheusCollector struct {
	metrics *services.MetricsService

	channelsCurrent   *prometheus.Desc
	appendsTotal      *prometheus.Desc
	duplicatesTotal   *prometheus.Desc
	selectionsTotal   *prometheus.Desc
	decodeFailures    *prometheus.Desc
	uploadFailures    *prometheus.Desc
	commitsTotal      *prometheus.Desc
	dualWriteFailures *prometheus.Desc
	lastCommitSeconds *prometheus.Desc
}

func NewPrometheusCollector(metrics *services.MetricsService) *PrometheusCollector {
	return &PrometheusCollector{
		metrics: metrics,
		channelsCurrent: prometheus.NewDesc(
			"huddle_channels_current",
			"Number of channels in the materialized directory",
			nil, nil,
		),
		appendsTotal: prometheus.NewDesc(
			"huddle_directory_appends_total",
			"Total channel records delivered from the remote log",
			nil, nil,
		),
		duplicatesTotal: prometheus.NewDesc(
			"huddle_directory_duplicates_total",
			"Delivered records absorbed as duplicates by id",
			nil, nil,
		),
		selectionsTotal: prometheus.NewDesc(
			"huddle_directory_selections_total",
			"Active channel changes, including the automatic first selection",
			nil, nil,
		),
		decodeFailures: prometheus.NewDesc(
			"huddle_avatar_decode_failures_total",
			"Avatar uploads rejected at the decode stage",
			nil, nil,
		),
		uploadFailures: prometheus.NewDesc(
			"huddle_avatar_upload_failures_total",
			"Avatar commits that failed during blob upload",
			nil, nil,
		),
		commitsTotal: prometheus.NewDesc(
			"huddle_avatar_commits_total",
			"Avatar commits that reached the committed stage",
			nil, nil,
		),
		dualWriteFailures: prometheus.NewDesc(
			"huddle_avatar_dual_write_failures_total",
			"Directory record writes that failed after a successful identity write",
			nil, nil,
		),
		lastCommitSeconds: prometheus.NewDesc(
			"huddle_avatar_last_commit_duration_seconds",
			"Wall time of the most recent successful avatar commit",
			nil, nil,
		),
	}
}

func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.channelsCurrent
	ch <- p.appendsTotal
	ch <- p.duplicatesTotal
	ch <- p.selectionsTotal
	ch <- p.decodeFailures
	ch <- p.uploadFailures
	ch <- p.commitsTotal
	ch <- p.dualWriteFailures
	ch <- p.lastCommitSeconds
}

func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	snap := p.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(p.channelsCurrent, prometheus.GaugeValue, float64(snap.ChannelsCurrent))
	ch <- prometheus.MustNewConstMetric(p.appendsTotal, prometheus.CounterValue, float64(snap.AppendsTotal))
	ch <- prometheus.MustNewConstMetric(p.duplicatesTotal, prometheus.CounterValue, float64(snap.DuplicatesTotal))
	ch <- prometheus.MustNewConstMetric(p.selectionsTotal, prometheus.CounterValue, float64(snap.SelectionsTotal))
	ch <- prometheus.MustNewConstMetric(p.decodeFailures, prometheus.CounterValue, float64(snap.DecodeFailures))
	ch <- prometheus.MustNewConstMetric(p.uploadFailures, prometheus.CounterValue, float64(snap.UploadFailures))
	ch <- prometheus.MustNewConstMetric(p.commitsTotal, prometheus.CounterValue, float64(snap.CommitsTotal))
	ch <- prometheus.MustNewConstMetric(p.dualWriteFailures, prometheus.CounterValue, float64(snap.DualWriteFailures))
	ch <- prometheus.MustNewConstMetric(p.lastCommitSeconds, prometheus.GaugeValue, snap.LastCommitLatency.Seconds())
}

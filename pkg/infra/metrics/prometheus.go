// Package metrics exposes download and extraction counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// Prometheus implements interfaces.Metrics on its own registry
type Prometheus struct {
	registry *prometheus.Registry

	downloadsInProgress prometheus.Gauge
	downloads           *prometheus.CounterVec
	downloadedBytes     prometheus.Counter
	downloadDuration    prometheus.Histogram
	extractions         *prometheus.CounterVec
	extractedFiles      prometheus.Counter
	extractedBytes      prometheus.Counter
}

// New creates collectors named <namespace>_* and registers them together with
// the Go runtime and process collectors.
func New(namespace string) *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		downloadsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_progress",
			Help:      "Downloads currently transferring",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Finished downloads by status and error kind",
		}, []string{"status", "kind"}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes of successfully downloaded files",
		}),
		downloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Duration of successful downloads",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s .. ~17min
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Finished extractions by status and error kind",
		}, []string{"status", "kind"}),
		extractedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_files_total",
			Help:      "Files written by successful extractions",
		}),
		extractedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_bytes_total",
			Help:      "Bytes written by successful extractions",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.downloadsInProgress,
		m.downloads,
		m.downloadedBytes,
		m.downloadDuration,
		m.extractions,
		m.extractedFiles,
		m.extractedBytes,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Prometheus) DownloadStarted() {
	m.downloadsInProgress.Inc()
}

func (m *Prometheus) DownloadCompleted(bytes uint64, elapsed time.Duration) {
	m.downloadsInProgress.Dec()
	m.downloads.WithLabelValues("success", "").Inc()
	m.downloadedBytes.Add(float64(bytes))
	m.downloadDuration.Observe(elapsed.Seconds())
}

func (m *Prometheus) DownloadFailed(kind types.ErrorKind) {
	m.downloadsInProgress.Dec()
	m.downloads.WithLabelValues("error", string(kind)).Inc()
}

func (m *Prometheus) ExtractCompleted(files int, bytes int64) {
	m.extractions.WithLabelValues("success", "").Inc()
	m.extractedFiles.Add(float64(files))
	m.extractedBytes.Add(float64(bytes))
}

func (m *Prometheus) ExtractFailed(kind types.ErrorKind) {
	m.extractions.WithLabelValues("error", string(kind)).Inc()
}

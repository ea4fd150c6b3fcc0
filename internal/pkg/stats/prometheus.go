package stats

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fixlog/fixlog/internal/pkg/config"
	"github.com/fixlog/fixlog/internal/pkg/utils"
)

type prometheusStats struct {
	samplesBuffered *prometheus.CounterVec
	samplesDropped  *prometheus.CounterVec
	overflows       *prometheus.CounterVec
	flushes         *prometheus.CounterVec
	flushErrors     *prometheus.CounterVec
	bytesFlushed    *prometheus.CounterVec
	bufferFill      *prometheus.GaugeVec
	errorState      *prometheus.GaugeVec
	sessionIndex    *prometheus.GaugeVec
}

var (
	promStats    *prometheusStats
	promLabelSet prometheus.Labels
)

func newPrometheusStats() *prometheusStats {
	labels := []string{"device", "hostname", "version"}

	// Stats can be initialized without a loaded config, e.g. from tests.
	prefix := "fixlog_"
	if config.Get() != nil {
		prefix = config.Get().PrometheusPrefix
	}

	return &prometheusStats{
		samplesBuffered: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "samples_buffered", Help: "Total number of samples accepted into the buffer"},
			labels,
		),
		samplesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "samples_dropped", Help: "Total number of samples lost"},
			labels,
		),
		overflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "buffer_overflows", Help: "Total number of rejected appends that forced an emergency flush"},
			labels,
		),
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "flushes", Help: "Total number of successful flushes to the session file"},
			labels,
		),
		flushErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "flush_errors", Help: "Total number of failed flushes"},
			labels,
		),
		bytesFlushed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: prefix + "bytes_flushed", Help: "Total bytes appended to session files"},
			labels,
		),
		bufferFill: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "buffer_fill_bytes", Help: "Current buffer fill level in bytes"},
			labels,
		),
		errorState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "error_state", Help: "1 when the error indicator is raised"},
			labels,
		),
		sessionIndex: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: prefix + "session_index", Help: "Index of the current logging session"},
			labels,
		),
	}
}

func initPrometheus() {
	promStats = newPrometheusStats()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	device := "unknown"
	if config.Get() != nil {
		device = config.Get().DeviceID
	}

	promLabelSet = prometheus.Labels{
		"device":   device,
		"hostname": hostname,
		"version":  utils.GetVersion().Version,
	}

	prometheus.MustRegister(
		promStats.samplesBuffered,
		promStats.samplesDropped,
		promStats.overflows,
		promStats.flushes,
		promStats.flushErrors,
		promStats.bytesFlushed,
		promStats.bufferFill,
		promStats.errorState,
		promStats.sessionIndex,
	)
}

func promLabels() prometheus.Labels {
	return promLabelSet
}

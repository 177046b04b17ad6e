package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Metrics contains the Prometheus metrics of the pipeline
type Metrics struct {
	registry *prometheus.Registry

	// Recording metrics
	RecordingsProcessed *prometheus.CounterVec
	RecordingDuration   prometheus.Histogram

	// Segment metrics
	SegmentsCreated  prometheus.Counter
	SegmentsInFlight prometheus.Gauge
	SegmentOutcomes  *prometheus.CounterVec

	// Aggregation metrics
	TranscriptionRuns *prometheus.CounterVec

	// Agent metrics
	AgentTaskDuration *prometheus.HistogramVec
	AgentToolCalls    *prometheus.CounterVec
}

// New creates the metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RecordingsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minutes_recordings_processed_total",
			Help: "Recordings processed, by outcome",
		}, []string{"outcome"}),
		RecordingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "minutes_recording_audio_seconds",
			Help:    "Audio length of processed recordings",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200},
		}),

		SegmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "minutes_segments_created_total",
			Help: "Segments produced by the splitter",
		}),
		SegmentsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "minutes_segments_in_flight",
			Help: "Segments currently dispatched to the transcription engine",
		}),
		SegmentOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minutes_segments_total",
			Help: "Segments that finished transcription, by state",
		}, []string{"state"}),

		TranscriptionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minutes_transcription_runs_total",
			Help: "Aggregation runs, by final state",
		}, []string{"state"}),

		AgentTaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minutes_agent_task_duration_seconds",
			Help:    "Duration of agent pipeline tasks",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"task", "outcome"}),
		AgentToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minutes_agent_tool_calls_total",
			Help: "Tool calls requested by agents",
		}, []string{"tool", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SegmentState implements transcriber.Observer
func (m *Metrics) SegmentState(index int, state transcriber.SegmentState) {
	switch state {
	case transcriber.StatePending:
		m.SegmentsCreated.Inc()
	case transcriber.StateDispatched:
		m.SegmentsInFlight.Inc()
	case transcriber.StateCompleted, transcriber.StateFailed, transcriber.StateCancelled:
		m.SegmentsInFlight.Dec()
		m.SegmentOutcomes.WithLabelValues(state.String()).Inc()
	}
}

// RunState implements transcriber.Observer
func (m *Metrics) RunState(state transcriber.RunState, segments int) {
	if state == transcriber.RunRunning {
		return
	}
	m.TranscriptionRuns.WithLabelValues(state.String()).Inc()
}

// ObserveRecording records one processed recording
func (m *Metrics) ObserveRecording(audio time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.RecordingsProcessed.WithLabelValues(outcome).Inc()
	if audio > 0 {
		m.RecordingDuration.Observe(audio.Seconds())
	}
}

// ObserveTask records an agent task duration
func (m *Metrics) ObserveTask(task string, took time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.AgentTaskDuration.WithLabelValues(task, outcome).Observe(took.Seconds())
}

// ObserveToolCall counts one tool call
func (m *Metrics) ObserveToolCall(tool string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.AgentToolCalls.WithLabelValues(tool, outcome).Inc()
}

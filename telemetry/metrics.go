// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	ChatMessagesSeen     prometheus.Counter
	TriggersSuppressed   prometheus.Counter
	Celebrations         *prometheus.CounterVec // by event_type
	CelebrationsDropped  prometheus.Counter
	SpeechPlayed         prometheus.Counter
	SpeechFailed         prometheus.Counter
	SpeechDropped        prometheus.Counter
	ViewerPollsFailed    prometheus.Counter

	// Histograms (seconds)
	FrameDuration           prometheus.Observer
	SpeechSynthesisDuration prometheus.Observer

	// Gauges
	ActiveParticlesGauge prometheus.Gauge
	ViewerCountGauge     prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ChatMessagesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_chat_messages_total", Help: "Number of chat messages observed"})
		TriggersSuppressed = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_triggers_suppressed_total", Help: "Number of keyword matches rejected by a cooldown gate"})
		Celebrations = promauto.NewCounterVec(prometheus.CounterOpts{Name: "celebrator_celebrations_total", Help: "Number of celebrations emitted"}, []string{"event_type"})
		CelebrationsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_celebrations_dropped_total", Help: "Number of celebrations dropped because the visual queue was full"})
		SpeechPlayed = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_speech_played_total", Help: "Number of speech announcements played"})
		SpeechFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_speech_failed_total", Help: "Number of speech announcements that failed to synthesize or play"})
		SpeechDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_speech_dropped_total", Help: "Number of speech announcements dropped because the queue was full"})
		ViewerPollsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "celebrator_viewer_polls_failed_total", Help: "Number of failed viewer-count polls"})
		FrameDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "celebrator_frame_duration_seconds", Help: "Overlay frame update+draw duration seconds", Buckets: []float64{.001, .002, .005, .01, .02, .033, .05, .1}})
		SpeechSynthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "celebrator_speech_synthesis_duration_seconds", Help: "Speech synthesis fetch duration seconds", Buckets: prometheus.DefBuckets})
		ActiveParticlesGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "celebrator_active_particles", Help: "Current number of live particles and glyphs"})
		ViewerCountGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "celebrator_viewer_count", Help: "Most recent viewer count sample"})
	})
}

// CountChatMessage increments the chat message counter.
func CountChatMessage() {
	if ChatMessagesSeen != nil {
		ChatMessagesSeen.Inc()
	}
}

// CountSuppressedTrigger increments the suppressed-trigger counter.
func CountSuppressedTrigger() {
	if TriggersSuppressed != nil {
		TriggersSuppressed.Inc()
	}
}

// CountCelebration increments the celebration counter for an event type.
func CountCelebration(eventType string) {
	if Celebrations != nil {
		Celebrations.WithLabelValues(eventType).Inc()
	}
}

// CountDroppedCelebration increments the dropped-celebration counter.
func CountDroppedCelebration() {
	if CelebrationsDropped != nil {
		CelebrationsDropped.Inc()
	}
}

// SetActiveParticles records the current particle population.
func SetActiveParticles(n int) {
	if ActiveParticlesGauge != nil {
		ActiveParticlesGauge.Set(float64(n))
	}
}

// SetViewerCount records the latest viewer-count sample.
func SetViewerCount(n int) {
	if ViewerCountGauge != nil {
		ViewerCountGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}

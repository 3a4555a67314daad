package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestInitRegistersCollectors(t *testing.T) {
	Init()

	if ChatMessagesSeen == nil {
		t.Error("ChatMessagesSeen counter not initialized")
	}
	if Celebrations == nil {
		t.Error("Celebrations counter vec not initialized")
	}
	if FrameDuration == nil {
		t.Error("FrameDuration histogram not initialized")
	}
	if ActiveParticlesGauge == nil {
		t.Error("ActiveParticlesGauge not initialized")
	}

	// Second call must not re-register (promauto panics on duplicates).
	Init()
}

func TestNilGuardedHelpersBeforeInit(t *testing.T) {
	// Helpers are used from packages that run in tests without Init.
	// None of these may panic even when the collectors are nil.
	saved := struct {
		chat      prometheus.Counter
		supp      prometheus.Counter
		cel       *prometheus.CounterVec
		dropped   prometheus.Counter
		particles prometheus.Gauge
		viewers   prometheus.Gauge
	}{ChatMessagesSeen, TriggersSuppressed, Celebrations, CelebrationsDropped, ActiveParticlesGauge, ViewerCountGauge}
	ChatMessagesSeen, TriggersSuppressed, Celebrations, CelebrationsDropped, ActiveParticlesGauge, ViewerCountGauge = nil, nil, nil, nil, nil, nil
	defer func() {
		ChatMessagesSeen, TriggersSuppressed, Celebrations, CelebrationsDropped, ActiveParticlesGauge, ViewerCountGauge = saved.chat, saved.supp, saved.cel, saved.dropped, saved.particles, saved.viewers
	}()

	CountChatMessage()
	CountSuppressedTrigger()
	CountCelebration("keyword")
	CountDroppedCelebration()
	SetActiveParticles(42)
	SetViewerCount(100)
}

func TestCelebrationCounterByEventType(t *testing.T) {
	Init()

	for _, typ := range []string{"keyword", "viewer_milestone", "manual"} {
		CountCelebration(typ)
	}

	metric := &dto.Metric{}
	if err := Celebrations.WithLabelValues("manual").Write(metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.Counter.GetValue() < 1 {
		t.Errorf("manual celebration counter = %v, want >= 1", metric.Counter.GetValue())
	}
}

func TestTimeFuncRecordsObservation(t *testing.T) {
	testHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_duration_seconds",
		Help:    "Test duration",
		Buckets: prometheus.DefBuckets,
	})
	prometheus.MustRegister(testHistogram)
	defer prometheus.Unregister(testHistogram)

	executed := false
	duration := TimeFunc(testHistogram, func() {
		time.Sleep(10 * time.Millisecond)
		executed = true
	})

	if !executed {
		t.Error("TimeFunc did not execute provided function")
	}
	if duration < 10*time.Millisecond {
		t.Errorf("TimeFunc duration = %v, want >= 10ms", duration)
	}

	metric := &dto.Metric{}
	if err := testHistogram.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram == nil || *metric.Histogram.SampleCount == 0 {
		t.Error("TimeFunc did not record observation in histogram")
	}
}

func TestTimeFuncNilObserver(t *testing.T) {
	ran := false
	TimeFunc(nil, func() { ran = true })
	if !ran {
		t.Error("TimeFunc skipped function with nil observer")
	}
}

func TestCorrelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("empty context correlation = %q, want empty", got)
	}

	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("correlation = %q, want abc-123", got)
	}

	// Logger helpers must not panic with or without a correlation id.
	LoggerWithCorr(ctx).Debug("with corr")
	LoggerWithCorr(context.Background()).Debug("without corr")
}

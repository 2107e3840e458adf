package arbor

import "github.com/prometheus/client_golang/prometheus"

// FitMetrics counts fit work done by blocks. A Display owns one; blocks built
// by hand may share one or leave it nil.
type FitMetrics struct {
	// Updates counts UpdateFit calls that did any work.
	Updates prometheus.Counter
	// FullDisplayResizes counts SetSizeFullDisplay calls.
	FullDisplayResizes prometheus.Counter
	// FitBoundsResizes counts SetSizeFitBounds calls.
	FitBoundsResizes prometheus.Counter
	// SkippedResizes counts common-ancestor updates whose bounds were
	// unchanged.
	SkippedResizes prometheus.Counter
	// Fallbacks counts passes forced to full display by unfittable content
	// under the common ancestor.
	Fallbacks prometheus.Counter
	// PassDuration observes the time spent flushing the scheduler.
	PassDuration prometheus.Histogram
}

// NewFitMetrics creates unregistered metrics under the given namespace.
func NewFitMetrics(namespace string) *FitMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      name,
			Help:      help,
		})
	}
	return &FitMetrics{
		Updates:            counter("updates_total", "Fit updates that recomputed state."),
		FullDisplayResizes: counter("full_display_resizes_total", "Surface resizes to the full viewport."),
		FitBoundsResizes:   counter("fit_bounds_resizes_total", "Surface resizes to fitted bounds."),
		SkippedResizes:     counter("skipped_resizes_total", "Fit updates with unchanged bounds."),
		Fallbacks:          counter("fallbacks_total", "Full-display fallbacks caused by unfittable subtrees."),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      "pass_duration_seconds",
			Help:      "Time spent updating dirty fits per repaint pass.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// Collectors returns every metric, for registration with a
// prometheus.Registerer.
func (m *FitMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Updates,
		m.FullDisplayResizes,
		m.FitBoundsResizes,
		m.SkippedResizes,
		m.Fallbacks,
		m.PassDuration,
	}
}


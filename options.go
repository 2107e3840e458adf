package arbor

// DefaultFitMargin is the dilation applied to fitted bounds after rounding
// out, so antialiased edges are not clipped.
const DefaultFitMargin = 4

// NoFitMargin disables dilation when assigned to Options.FitMargin.
const NoFitMargin = -1

// Options configures a Display. The zero value is usable after
// EnsureDefaults.
type Options struct {
	// Width and Height are the initial viewport size. Default 640x480.
	Width, Height int

	// PreferredFit is the fit new blocks start with. The zero value is
	// FitCommonAncestor.
	PreferredFit Fit

	// FitMargin is added on every side of fitted bounds after rounding out
	// and before clamping to the viewport. Default DefaultFitMargin.
	FitMargin float64

	// DisableViewportClamp skips clamping fitted bounds to the viewport. The
	// clamp only ever applies to blocks whose transform root is the display
	// root.
	DisableViewportClamp bool

	// NewSurface creates the backend surface for a new block. Default: a
	// surface that only records the last requested size.
	NewSurface func(b *FittedBlock) Surface

	// Metrics receives fit counters. Default: NewFitMetrics("arbor").
	Metrics *FitMetrics

	// Debug enables per-pass logging, fit transition logging, and tree sanity
	// checks.
	Debug bool

	// Logger is used in debug mode. Default DefaultLogger.
	Logger Logger
}

// EnsureDefaults fills in zero fields and returns o.
func (o *Options) EnsureDefaults() *Options {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	if o.FitMargin == 0 {
		o.FitMargin = DefaultFitMargin
	} else if o.FitMargin < 0 {
		o.FitMargin = 0
	}
	if o.NewSurface == nil {
		o.NewSurface = func(*FittedBlock) Surface { return &RecordingSurface{} }
	}
	if o.Metrics == nil {
		o.Metrics = NewFitMetrics("arbor")
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger{}
	}
	return o
}

// FitOptions is the part of the configuration a FittedBlock uses.
type FitOptions struct {
	// Margin is the dilation applied after rounding out.
	Margin float64
	// ClampToViewport constrains fitted bounds to the viewport when the
	// block's transform root is the display root.
	ClampToViewport bool
	Metrics         *FitMetrics
	Debug           bool
	Logger          Logger
}

// DefaultFitOptions returns the margin and clamp a Display uses by default.
func DefaultFitOptions() FitOptions {
	return FitOptions{Margin: DefaultFitMargin, ClampToViewport: true, Logger: DefaultLogger{}}
}

func (o *Options) fitOptions() FitOptions {
	return FitOptions{
		Margin:          o.FitMargin,
		ClampToViewport: !o.DisableViewportClamp,
		Metrics:         o.Metrics,
		Debug:           o.Debug,
		Logger:          o.Logger,
	}
}

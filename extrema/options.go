package extrema

// Config holds extremum detection parameters.
type Config struct {
	// Tolerance is the plateau epsilon: neighboring samples whose g
	// values differ by no more than Tolerance belong to the same
	// plateau and produce at most one extremum.
	Tolerance float64

	// MinProminence discards candidates whose prominence (vertical
	// distance to the lowest saddle toward a higher point on either
	// side) falls below the threshold. Zero disables the filter.
	MinProminence float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults: exact neighbor comparison and no
// prominence filtering.
func DefaultConfig() Config {
	return Config{}
}

// WithTolerance sets the plateau epsilon.
func WithTolerance(eps float64) Option {
	return func(cfg *Config) {
		if eps >= 0 {
			cfg.Tolerance = eps
		}
	}
}

// WithMinProminence enables noise suppression with the given threshold.
func WithMinProminence(p float64) Option {
	return func(cfg *Config) {
		if p >= 0 {
			cfg.MinProminence = p
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

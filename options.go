package rowcalc

import "go.uber.org/zap"

// DefaultPrecision is the number of decimal places results are rounded to.
const DefaultPrecision = 4

// Options holds configuration for a Sheet and its Engine.
type Options struct {
	evaluator  Evaluator
	normalizer Normalizer
	precision  int
	logger     *zap.Logger
	listeners  []RowListener
	newID      func() string
}

func defaultOptions() *Options {
	return &Options{
		evaluator:  NewEvaluator(),
		normalizer: DefaultNormalizer(),
		precision:  DefaultPrecision,
		logger:     zap.NewNop(),
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Sheet or an Engine.
type Option func(*Options)

// WithEvaluator replaces the expr-lang backed evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(o *Options) {
		if ev != nil {
			o.evaluator = ev
		}
	}
}

// WithNormalizer sets how expression text is cleaned before evaluation.
func WithNormalizer(n Normalizer) Option {
	return func(o *Options) { o.normalizer = n }
}

// WithPrecision sets the number of decimal places results are rounded to (default: 4).
func WithPrecision(places int) Option {
	return func(o *Options) {
		if places >= 0 {
			o.precision = places
		}
	}
}

// WithLogger sets the logger used for sweep and persistence diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRowListener adds a listener for row inserts, removals and sweeps.
func WithRowListener(l RowListener) Option {
	return func(o *Options) { o.listeners = append(o.listeners, l) }
}

// WithIDGenerator sets the function that produces row IDs (default: random UUIDs).
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) { o.newID = fn }
}

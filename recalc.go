package rowcalc

import (
	"errors"
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StatusOK is the status text of a sweep without errors.
const StatusOK = "OK"

// ErrInvalidVariable is reported for a row whose variable name cannot be bound.
var ErrInvalidVariable = errors.New("invalid variable name")

// RowError ties an evaluation failure to the row it came from.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Report summarizes one sweep.
type Report struct {
	// Status is "OK" or the accumulated error text of every failing row.
	Status string
	// Err aggregates one *RowError per failing row; nil when Status is "OK".
	Err error
	// Evaluated counts rows with a non-blank expression.
	Evaluated int
	// Failed counts rows whose expression did not produce a value.
	Failed int
}

// OK reports whether the sweep finished without errors.
func (r Report) OK() bool { return r.Err == nil }

// Errors returns the individual row errors in row order.
func (r Report) Errors() []error { return multierr.Errors(r.Err) }

// Engine recalculates every row of a Store in one forward pass.
type Engine struct {
	evaluator  Evaluator
	normalizer Normalizer
	precision  int
	logger     *zap.Logger
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	return newEngine(buildOptions(opts))
}

func newEngine(o *Options) *Engine {
	return &Engine{
		evaluator:  o.evaluator,
		normalizer: o.normalizer,
		precision:  o.precision,
		logger:     o.logger,
	}
}

// Recalculate sweeps s top to bottom. Each row sees only the variables bound
// by rows above it; a variable is bound to the rounded result, so the value
// shown and the value used downstream are always the same. Failing rows get
// no result and the sweep continues. A trailing blank row is ensured last.
func (e *Engine) Recalculate(s *Store) Report {
	env := NewEnvironment()
	var errs error
	report := Report{Status: StatusOK}

	for i, r := range s.rows {
		text := e.normalizer.Normalize(r.Expression)
		if text == "" {
			r.result = nil
			continue
		}
		report.Evaluated++

		v, err := e.evaluator.Evaluate(text, env)
		if err != nil {
			r.result = nil
			report.Failed++
			errs = multierr.Append(errs, &RowError{Index: i, Err: err})
			continue
		}
		v = roundTo(v, e.precision)
		r.result = &v

		name := r.BindingName()
		if name == "" {
			continue
		}
		if !IsValidVariableName(name) {
			errs = multierr.Append(errs, &RowError{Index: i, Err: fmt.Errorf("%w %q", ErrInvalidVariable, name)})
			continue
		}
		env.Bind(name, v)
	}

	if s.EnsureTrailingBlank() {
		e.logger.Debug("appended trailing blank row", zap.Int("rows", s.Len()))
	}

	if errs != nil {
		report.Err = errs
		report.Status = errs.Error()
	}
	e.logger.Debug("sweep complete",
		zap.Int("rows", s.Len()),
		zap.Int("evaluated", report.Evaluated),
		zap.Int("failed", report.Failed),
		zap.Int("bound", env.Len()),
		zap.String("status", report.Status))
	return report
}

// roundingContext rounds halves away from zero, the way results are shown.
var roundingContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// roundTo rounds v to the given number of decimal places, halves away from
// zero. Rounding happens in decimal on the shortest representation of v, so
// a typed midpoint like 0.00015 rounds to 0.0002 even though its binary value
// is slightly below the midpoint. Values too large to carry a fractional part
// are returned unchanged.
func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v)*math.Pow10(places) >= 1<<53 {
		return v
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return v
	}
	if _, err := roundingContext.Quantize(&d, &d, int32(-places)); err != nil {
		return v
	}
	f, err := d.Float64()
	if err != nil {
		return v
	}
	if f == 0 {
		return 0 // no "-0"
	}
	return f
}

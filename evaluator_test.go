package rowcalc

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Arithmetic(t *testing.T) {
	ev := NewEvaluator()
	tests := []struct {
		expr string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"-4+1", -3},
		{"-(2+3)", -5},
		{"+5", 5},
		{"7/2", 3.5},
		{"1.5*2", 3},
		{"10-2-3", 5},
		{"1e3", 1000},
		{"  2 * ( 3 + 4 )  ", 14},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expr, NewEnvironment())
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluate_Variables(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", 5)
	env.Bind("rate_2", 0.5)

	got, err := NewEvaluator().Evaluate("x*2 + rate_2", env)
	require.NoError(t, err)
	assert.Equal(t, 10.5, got)
}

func TestEvaluate_IntegerLiteralsAreFloat(t *testing.T) {
	got, err := NewEvaluator().Evaluate("9999999999 * 9999999999", NewEnvironment())
	require.NoError(t, err)
	assert.InEpsilon(t, 9.999999998e19, got, 1e-12)

	got, err = NewEvaluator().Evaluate("1/3", NewEnvironment())
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, got, 1e-15)
}

func TestEvaluate_IntegerLiteralsBeyondInt64(t *testing.T) {
	got, err := NewEvaluator().Evaluate("100000000000000000000/3", NewEnvironment())
	require.NoError(t, err)
	assert.InEpsilon(t, 1e20/3, got, 1e-12)

	got, err = NewEvaluator().Evaluate("-9223372036854775808 * 2", NewEnvironment())
	require.NoError(t, err)
	assert.InEpsilon(t, -1.8446744073709552e19, got, 1e-12)
}

func TestWidenLargeIntegers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"100000000000000000000/3", "100000000000000000000.0/3"},
		{"(99999999999999999999)", "(99999999999999999999.0)"},
		{"9223372036854775807", "9223372036854775807"},
		{"9223372036854775808", "9223372036854775808.0"},
		{"1.99999999999999999999", "1.99999999999999999999"},
		{"99999999999999999999e2", "99999999999999999999e2"},
		{"v99999999999999999999 + 1", "v99999999999999999999 + 1"},
		{"größe99999999999999999999", "größe99999999999999999999"},
		{"12*x", "12*x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, widenLargeIntegers(tt.in), tt.in)
	}
}

func TestEvaluate_UnknownName(t *testing.T) {
	_, err := NewEvaluator().Evaluate("y*2", NewEnvironment())
	require.Error(t, err)

	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "y*2", evalErr.Expression)
	assert.Contains(t, evalErr.Message, "y")
	assert.NotContains(t, err.Error(), "\n", "source snippet should be stripped")
}

func TestEvaluate_SyntaxErrors(t *testing.T) {
	for _, expr := range []string{"2+", "(1+2", "1+*2", "3 4"} {
		t.Run(expr, func(t *testing.T) {
			_, err := NewEvaluator().Evaluate(expr, NewEnvironment())
			var evalErr *EvalError
			require.True(t, errors.As(err, &evalErr), "got %v", err)
		})
	}
}

func TestEvaluate_RejectsNonArithmetic(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", 1)
	for _, expr := range []string{`"text"`, "true", "x > 1", "abs(x)", "[1, 2]"} {
		t.Run(expr, func(t *testing.T) {
			_, err := NewEvaluator().Evaluate(expr, env)
			var evalErr *EvalError
			require.True(t, errors.As(err, &evalErr), "got %v", err)
		})
	}

	_, err := NewEvaluator().Evaluate("7 % 2", env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported operator "%"`)

	_, err = NewEvaluator().Evaluate("2 ** 3", env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported operator "**"`)
}

func TestEvaluate_DivisionByZeroIsNotRejected(t *testing.T) {
	got, err := NewEvaluator().Evaluate("1/0", NewEnvironment())
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}

func TestEvaluate_DeepNestingFailsFast(t *testing.T) {
	expr := strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)
	_, err := NewEvaluator().Evaluate(expr, NewEnvironment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested too deeply")

	ok := strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)
	got, err := NewEvaluator().Evaluate(ok, NewEnvironment())
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestEvaluate_EmptyExpression(t *testing.T) {
	_, err := NewEvaluator().Evaluate("   ", NewEnvironment())
	require.Error(t, err)
}

func TestEvaluate_NoStateBetweenCalls(t *testing.T) {
	ev := NewEvaluator()
	env := NewEnvironment()
	env.Bind("x", 1)

	got, err := ev.Evaluate("x+1", env)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = ev.Evaluate("x+1", NewEnvironment())
	assert.Error(t, err, "a name bound in an earlier call must not leak")
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()
	assert.Equal(t, 0, env.Len())
	assert.False(t, env.Contains("a"))

	env.Bind("b", 2)
	env.Bind("a", 1)
	env.Bind("b", 3)

	v, ok := env.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = env.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, env.Names())
}

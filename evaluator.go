package rowcalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
)

// maxNesting bounds parenthesis depth so pathological input fails fast.
const maxNesting = 64

// Evaluator evaluates a single arithmetic expression against an Environment.
type Evaluator interface {
	Evaluate(expression string, env *Environment) (float64, error)
}

// EvalError is returned for malformed syntax, unknown names and any other
// failure while evaluating an expression.
type EvalError struct {
	Expression string
	Column     int // 1-based, 0 when unknown
	Message    string
}

func (e *EvalError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s (column %d)", e.Message, e.Column)
	}
	return e.Message
}

// exprEvaluator implements Evaluator using expr-lang/expr.
// Programs are compiled per call; the set of bound names changes between
// rows, so a compiled program is never reusable.
type exprEvaluator struct{}

// NewEvaluator creates an Evaluator backed by expr-lang/expr.
func NewEvaluator() Evaluator {
	return exprEvaluator{}
}

func (exprEvaluator) Evaluate(expression string, env *Environment) (float64, error) {
	if strings.TrimSpace(expression) == "" {
		return 0, &EvalError{Expression: expression, Message: "empty expression"}
	}
	if depth := nestingDepth(expression); depth > maxNesting {
		return 0, &EvalError{
			Expression: expression,
			Message:    fmt.Sprintf("expression nested too deeply (%d levels)", depth),
		}
	}

	vars := env.toMap()
	guard := &arithmeticOnly{expression: expression}
	program, err := expr.Compile(widenLargeIntegers(expression), expr.Env(vars), expr.Patch(guard))
	if guard.err != nil {
		return 0, guard.err
	}
	if err != nil {
		return 0, newEvalError(expression, err)
	}
	out, err := expr.Run(program, vars)
	if err != nil {
		return 0, newEvalError(expression, err)
	}
	return toFloat(expression, out)
}

// arithmeticOnly restricts the expr-lang tree to numbers, names and the four
// arithmetic operators, and widens integer literals to float64.
type arithmeticOnly struct {
	expression string
	err        error
}

func (a *arithmeticOnly) Visit(node *ast.Node) {
	if a.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.FloatNode, *ast.IdentifierNode:
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			a.reject(n, fmt.Sprintf("unsupported operator %q", n.Operator))
		}
	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/":
		default:
			a.reject(n, fmt.Sprintf("unsupported operator %q", n.Operator))
		}
	default:
		a.reject(n, fmt.Sprintf("unsupported expression %q", n.String()))
	}
}

func (a *arithmeticOnly) reject(n ast.Node, msg string) {
	a.err = &EvalError{
		Expression: a.expression,
		Column:     n.Location().From + 1,
		Message:    msg,
	}
}

// newEvalError converts an expr-lang error into an EvalError, dropping the
// multi-line source snippet expr-lang appends to its messages.
func newEvalError(expression string, err error) *EvalError {
	var fe *file.Error
	if errors.As(err, &fe) {
		return &EvalError{Expression: expression, Column: fe.Column + 1, Message: fe.Message}
	}
	return &EvalError{Expression: expression, Message: err.Error()}
}

func toFloat(expression string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, &EvalError{
		Expression: expression,
		Message:    fmt.Sprintf("expression evaluated to %T, expected a number", v),
	}
}

// widenLargeIntegers appends ".0" to integer literals that do not fit in an
// int64. expr-lang parses integer literals with strconv.ParseInt before any
// patch runs, so these would otherwise fail instead of becoming floats.
func widenLargeIntegers(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if !isDigit(s[i]) || (i > 0 && (isWordByte(s[i-1]) || s[i-1] == '.')) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		lit := s[i:j]
		b.WriteString(lit)
		if j == len(s) || (s[j] != '.' && s[j] != 'e' && s[j] != 'E' && !isWordByte(s[j])) {
			if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
				b.WriteString(".0")
			}
		}
		i = j
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isWordByte reports bytes that can continue an identifier, including any
// byte of a multi-byte UTF-8 letter.
func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || c >= 0x80 || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

// nestingDepth returns the maximum parenthesis depth of s.
func nestingDepth(s string) int {
	depth, deepest := 0, 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ')':
			depth--
		}
	}
	return deepest
}

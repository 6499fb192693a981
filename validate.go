package rowcalc

import (
	"fmt"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Row will not produce a value or binding
	SeverityWarning                 // Row works but may not mean what it says
)

// ValidationIssue is one problem found by Validate.
type ValidationIssue struct {
	Severity Severity
	Row      int
	Message  string
}

// String formats the issue as "[ERROR] row 2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] row %d: %s", sev, v.Row, v.Message)
}

// Validate checks settings rows statically, without evaluating anything.
// Beyond what a sweep reports it explains why a name is unbound (it is only
// bound further down) and flags variables that shadow an earlier row.
func Validate(settings *Settings, opts ...Option) []ValidationIssue {
	o := buildOptions(opts)

	boundAt := make(map[string][]int)
	for i, r := range settings.Rows {
		if name := (Row{Variable: r.Variable}).BindingName(); IsValidVariableName(name) {
			boundAt[name] = append(boundAt[name], i)
		}
	}

	var issues []ValidationIssue
	visible := make(map[string]int)
	for i, r := range settings.Rows {
		name := (Row{Variable: r.Variable}).BindingName()
		if name != "" && !IsValidVariableName(name) {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Row:      i,
				Message:  fmt.Sprintf("invalid variable name %q", name),
			})
		}
		if prev, ok := visible[name]; ok && name != "" {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Row:      i,
				Message:  fmt.Sprintf("variable %q shadows row %d", name, prev),
			})
		}

		issues = append(issues, validateExpression(i, o.normalizer.Normalize(r.Expression), visible, boundAt)...)

		if name != "" && IsValidVariableName(name) {
			visible[name] = i
		}
	}
	return issues
}

func validateExpression(row int, text string, visible map[string]int, boundAt map[string][]int) []ValidationIssue {
	if text == "" {
		return nil
	}
	tree, err := parser.Parse(widenLargeIntegers(text))
	if err != nil {
		return []ValidationIssue{{
			Severity: SeverityError,
			Row:      row,
			Message:  fmt.Sprintf("syntax error: %v", newEvalError(text, err)),
		}}
	}
	guard := &arithmeticOnly{expression: text}
	ast.Walk(&tree.Node, guard)
	if guard.err != nil {
		return []ValidationIssue{{Severity: SeverityError, Row: row, Message: guard.err.Error()}}
	}

	names := &identifierCollector{}
	ast.Walk(&tree.Node, names)

	var issues []ValidationIssue
	for _, name := range names.names {
		if _, ok := visible[name]; ok {
			continue
		}
		msg := fmt.Sprintf("unknown name %q", name)
		for _, at := range boundAt[name] {
			if at >= row {
				msg = fmt.Sprintf("%q is not bound until row %d", name, at)
				break
			}
		}
		issues = append(issues, ValidationIssue{Severity: SeverityError, Row: row, Message: msg})
	}
	return issues
}

// identifierCollector records each distinct identifier once.
type identifierCollector struct {
	names []string
	seen  map[string]bool
}

func (c *identifierCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if !c.seen[id.Value] {
		c.seen[id.Value] = true
		c.names = append(c.names, id.Value)
	}
}

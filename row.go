package rowcalc

import (
	"regexp"
	"strconv"
	"strings"
)

// Row is one variable/expression/comment record at a position in a Store.
// The result is derived by the recalculation engine and cannot be set directly.
type Row struct {
	ID         string
	Variable   string
	Expression string
	Comment    string

	result *float64
}

// Result returns the value computed by the most recent sweep.
// ok is false when the expression is blank or failed to evaluate.
func (r Row) Result() (value float64, ok bool) {
	if r.result == nil {
		return 0, false
	}
	return *r.result, true
}

// DisplayResult formats the result for display; empty when there is no value.
func (r Row) DisplayResult() string {
	v, ok := r.Result()
	if !ok {
		return ""
	}
	return FormatNumber(v)
}

// IsBlank reports whether variable, expression and comment are all empty.
func (r Row) IsBlank() bool {
	return strings.TrimSpace(r.Variable) == "" &&
		strings.TrimSpace(r.Expression) == "" &&
		strings.TrimSpace(r.Comment) == ""
}

// BindingName returns the trimmed variable name.
func (r Row) BindingName() string {
	return strings.TrimSpace(r.Variable)
}

// FormatNumber renders v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var identPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*$`)

// reservedNames cannot be bound because expr-lang parses them as operators or literals.
var reservedNames = map[string]bool{
	"true": true, "false": true, "nil": true,
	"not": true, "and": true, "or": true, "in": true,
	"matches": true, "contains": true, "startsWith": true, "endsWith": true,
	"let": true, "if": true, "else": true,
}

// IsValidVariableName reports whether name can be bound and referenced by later rows.
func IsValidVariableName(name string) bool {
	return identPattern.MatchString(name) && !reservedNames[name]
}

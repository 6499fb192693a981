package rowcalc

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable listing of the sheet: one line per row
// with its binding, expression, result and comment, followed by the status.
// Useful for debugging and for the CLI's text output.
func (s *Sheet) Describe() string {
	var b strings.Builder
	rows := s.store.Rows()
	for i, r := range rows {
		describeRow(&b, i, r)
	}
	fmt.Fprintf(&b, "Status: %s\n", s.Status())
	return b.String()
}

func describeRow(b *strings.Builder, index int, r Row) {
	fmt.Fprintf(b, "%3d  ", index)
	if r.IsBlank() {
		b.WriteString("(blank)\n")
		return
	}
	if name := r.BindingName(); name != "" {
		fmt.Fprintf(b, "%s = ", name)
	}
	b.WriteString(strings.TrimSpace(r.Expression))
	if res := r.DisplayResult(); res != "" {
		fmt.Fprintf(b, "  => %s", res)
	} else if strings.TrimSpace(r.Expression) != "" {
		b.WriteString("  => (no value)")
	}
	if c := strings.TrimSpace(r.Comment); c != "" {
		fmt.Fprintf(b, "  # %s", c)
	}
	b.WriteByte('\n')
}

// Package tui is a terminal front end for a rowcalc.Sheet. It keeps one
// line of text inputs per row and follows the sheet's insert and remove
// events so the inputs stay aligned with row positions.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javajack/rowcalc"
)

// Column identifies the editable field of a row.
type Column int

const (
	ColVariable Column = iota
	ColExpression
	ColComment
	numColumns
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// rowEditor holds the inputs for one row.
type rowEditor struct {
	inputs [numColumns]textinput.Model
}

func newRowEditor(r rowcalc.Row) rowEditor {
	var e rowEditor
	for c := range e.inputs {
		in := textinput.New()
		in.Prompt = ""
		e.inputs[c] = in
	}
	e.inputs[ColVariable].Width = 10
	e.inputs[ColVariable].Placeholder = "name"
	e.inputs[ColExpression].Width = 28
	e.inputs[ColExpression].Placeholder = "expression"
	e.inputs[ColComment].Width = 24
	e.inputs[ColComment].Placeholder = "comment"
	e.inputs[ColVariable].SetValue(r.Variable)
	e.inputs[ColExpression].SetValue(r.Expression)
	e.inputs[ColComment].SetValue(r.Comment)
	return e
}

// Model is the bubbletea model for editing a sheet.
type Model struct {
	sheet   *rowcalc.Sheet
	editors []rowEditor
	row     int
	col     Column
	status  string
	notice  string
}

// New builds a Model. open must create the sheet with the given listener
// registered so that rows added by sweeps reach the model.
func New(open func(rowcalc.RowListener) *rowcalc.Sheet) *Model {
	m := &Model{}
	sheet := open(rowListener{m})
	m.sheet = sheet
	m.editors = make([]rowEditor, 0, sheet.Len())
	for _, r := range sheet.Rows() {
		m.editors = append(m.editors, newRowEditor(r))
	}
	m.status = sheet.Status()
	m.focus()
	return m
}

// Sheet returns the sheet being edited.
func (m *Model) Sheet() *rowcalc.Sheet { return m.sheet }

// Cursor returns the focused row and column.
func (m *Model) Cursor() (int, Column) { return m.row, m.col }

// rowListener keeps the editors aligned with the sheet's rows.
type rowListener struct{ m *Model }

func (l rowListener) RowInserted(index int) {
	m := l.m
	if m.sheet == nil {
		return
	}
	r, err := m.sheet.Row(index)
	if err != nil {
		return
	}
	m.editors = append(m.editors, rowEditor{})
	copy(m.editors[index+1:], m.editors[index:])
	m.editors[index] = newRowEditor(r)
	if index <= m.row && len(m.editors) > 1 {
		m.row++
	}
}

func (l rowListener) RowRemoved(index int) {
	m := l.m
	if m.sheet == nil || index >= len(m.editors) {
		return
	}
	m.editors = append(m.editors[:index], m.editors[index+1:]...)
	if m.row > index || m.row >= len(m.editors) {
		m.row--
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (l rowListener) Recalculated(report rowcalc.Report) {
	l.m.status = report.Status
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "up":
		m.move(-1, 0)
		return m, nil
	case "down", "enter":
		m.move(1, 0)
		return m, nil
	case "tab":
		m.move(0, 1)
		return m, nil
	case "shift+tab":
		m.move(0, -1)
		return m, nil
	case "ctrl+n":
		if _, err := m.sheet.InsertRowAfter(m.row); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.move(1, 0)
		return m, nil
	case "ctrl+d":
		if err := m.sheet.DeleteRow(m.row); err != nil {
			m.notice = err.Error()
		}
		m.focus()
		return m, nil
	}

	in := &m.editors[m.row].inputs[m.col]
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if after := in.Value(); after != before {
		m.apply(m.row, m.col, after)
	}
	return m, cmd
}

// apply pushes an edit into the sheet, which recalculates every row.
func (m *Model) apply(row int, col Column, text string) {
	var err error
	switch col {
	case ColVariable:
		err = m.sheet.SetVariable(row, text)
	case ColExpression:
		err = m.sheet.SetExpression(row, text)
	case ColComment:
		err = m.sheet.SetComment(row, text)
	}
	if err != nil {
		m.notice = err.Error()
	}
}

func (m *Model) move(dRow, dCol int) {
	col := int(m.col) + dCol
	row := m.row + dRow
	if col < 0 {
		col = int(numColumns) - 1
		row--
	} else if col >= int(numColumns) {
		col = 0
		row++
	}
	if row < 0 || row >= len(m.editors) {
		return
	}
	m.row, m.col = row, Column(col)
	m.focus()
}

func (m *Model) focus() {
	if m.row >= len(m.editors) {
		m.row = len(m.editors) - 1
	}
	for i := range m.editors {
		for c := range m.editors[i].inputs {
			if i == m.row && Column(c) == m.col {
				m.editors[i].inputs[c].Focus()
			} else {
				m.editors[i].inputs[c].Blur()
			}
		}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("   #  variable    expression                    result        comment"))
	b.WriteByte('\n')

	rows := m.sheet.Rows()
	for i, e := range m.editors {
		marker := "  "
		if i == m.row {
			marker = "> "
		}
		result := noneStyle.Render(padRight("", 12))
		if i < len(rows) {
			if s := rows[i].DisplayResult(); s != "" {
				result = resultStyle.Render(padRight(s, 12))
			}
		}
		b.WriteString(marker)
		fmt.Fprintf(&b, "%2d", i)
		b.WriteString("  ")
		b.WriteString(e.inputs[ColVariable].View())
		b.WriteString("  ")
		b.WriteString(e.inputs[ColExpression].View())
		b.WriteString("  ")
		b.WriteString(result)
		b.WriteString("  ")
		b.WriteString(e.inputs[ColComment].View())
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.status == rowcalc.StatusOK {
		b.WriteString(okStyle.Render(m.status))
	} else {
		b.WriteString(errStyle.Render(m.status))
	}
	b.WriteByte('\n')
	if m.notice != "" {
		b.WriteString(errStyle.Render(m.notice))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render("tab/shift+tab: field  up/down: row  ctrl+n: insert  ctrl+d: delete  esc: quit"))
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

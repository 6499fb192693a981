package rowcalc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrDeleteRefused is returned when a delete would break the store's
	// invariants. The store is left unchanged.
	ErrDeleteRefused = errors.New("delete refused")

	// ErrRowOutOfRange is returned for a position outside the store.
	ErrRowOutOfRange = errors.New("row out of range")
)

// Store is the ordered list of rows. Position is the only ordering key;
// each row also carries a stable ID that survives inserts and deletes.
type Store struct {
	rows      []*Row
	listeners []RowListener
	newID     func() string
}

// NewStore creates an empty Store. Row IDs come from newID, or random UUIDs when nil.
func NewStore(newID func() string) *Store {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Store{newID: newID}
}

// AddListener registers l for structural events.
func (s *Store) AddListener(l RowListener) {
	s.listeners = append(s.listeners, l)
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Row returns a copy of the row at index.
func (s *Store) Row(index int) (Row, error) {
	r, err := s.at(index)
	if err != nil {
		return Row{}, err
	}
	return *r, nil
}

// Rows returns a copy of all rows in order.
func (s *Store) Rows() []Row {
	out := make([]Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = *r
	}
	return out
}

// IndexOf returns the current position of the row with the given ID, or -1.
func (s *Store) IndexOf(id string) int {
	for i, r := range s.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a row with the given texts and returns its position.
func (s *Store) Add(variable, expression, comment string) int {
	s.rows = append(s.rows, &Row{
		ID:         s.newID(),
		Variable:   variable,
		Expression: expression,
		Comment:    comment,
	})
	index := len(s.rows) - 1
	s.notifyInserted(index)
	return index
}

// AppendBlank adds a blank row at the end and returns its position.
func (s *Store) AppendBlank() int {
	return s.Add("", "", "")
}

// InsertBlankAfter inserts a blank row immediately after index and returns
// the new row's position. An index of -1 inserts at the top.
func (s *Store) InsertBlankAfter(index int) (int, error) {
	if index < -1 || index >= len(s.rows) {
		return 0, fmt.Errorf("insert after %d: %w", index, ErrRowOutOfRange)
	}
	pos := index + 1
	s.rows = append(s.rows, nil)
	copy(s.rows[pos+1:], s.rows[pos:])
	s.rows[pos] = &Row{ID: s.newID()}
	s.notifyInserted(pos)
	return pos, nil
}

// Delete removes the row at index. It refuses to remove the sole row and
// the trailing row while it is blank.
func (s *Store) Delete(index int) error {
	if _, err := s.at(index); err != nil {
		return fmt.Errorf("delete row %d: %w", index, err)
	}
	if len(s.rows) == 1 {
		return fmt.Errorf("delete row %d: %w: only row", index, ErrDeleteRefused)
	}
	if index == len(s.rows)-1 && s.rows[index].IsBlank() {
		return fmt.Errorf("delete row %d: %w: trailing blank row", index, ErrDeleteRefused)
	}
	copy(s.rows[index:], s.rows[index+1:])
	s.rows[len(s.rows)-1] = nil
	s.rows = s.rows[:len(s.rows)-1]
	s.notifyRemoved(index)
	return nil
}

// EnsureTrailingBlank appends a blank row when the store is empty or its
// last row is not blank. It reports whether a row was added.
func (s *Store) EnsureTrailingBlank() bool {
	if n := len(s.rows); n > 0 && s.rows[n-1].IsBlank() {
		return false
	}
	s.AppendBlank()
	return true
}

// TrimTrailingBlanks removes blank rows at the end so that at most one
// remains after the last non-blank row. It returns the number removed.
func (s *Store) TrimTrailingBlanks() int {
	removed := 0
	for n := len(s.rows); n > 1 && s.rows[n-1].IsBlank() && s.rows[n-2].IsBlank(); n = len(s.rows) {
		s.rows[n-1] = nil
		s.rows = s.rows[:n-1]
		s.notifyRemoved(n - 1)
		removed++
	}
	return removed
}

// SetVariable replaces the variable name of the row at index.
func (s *Store) SetVariable(index int, text string) error {
	r, err := s.at(index)
	if err != nil {
		return fmt.Errorf("set variable: %w", err)
	}
	r.Variable = text
	return nil
}

// SetExpression replaces the expression text of the row at index.
func (s *Store) SetExpression(index int, text string) error {
	r, err := s.at(index)
	if err != nil {
		return fmt.Errorf("set expression: %w", err)
	}
	r.Expression = text
	return nil
}

// SetComment replaces the comment of the row at index.
func (s *Store) SetComment(index int, text string) error {
	r, err := s.at(index)
	if err != nil {
		return fmt.Errorf("set comment: %w", err)
	}
	r.Comment = text
	return nil
}

func (s *Store) at(index int) (*Row, error) {
	if index < 0 || index >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d (rows: %d)", ErrRowOutOfRange, index, len(s.rows))
	}
	return s.rows[index], nil
}

func (s *Store) notifyInserted(index int) {
	for _, l := range s.listeners {
		l.RowInserted(index)
	}
}

func (s *Store) notifyRemoved(index int) {
	for _, l := range s.listeners {
		l.RowRemoved(index)
	}
}

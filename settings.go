package rowcalc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Geometry floors applied after loading.
const (
	MinHeight = 110
	MinWidth  = 400
)

// Settings is the persisted snapshot: window geometry plus the row texts.
// Results are never stored; they are recomputed after loading.
type Settings struct {
	Top    float64       `json:"Top"`
	Left   float64       `json:"Left"`
	Height float64       `json:"Height"`
	Width  float64       `json:"Width"`
	Rows   []SettingsRow `json:"Rows"`
}

// SettingsRow is the persisted form of a Row.
type SettingsRow struct {
	Variable   string `json:"Variable"`
	Expression string `json:"Expression"`
	Comment    string `json:"Comment"`
}

// IsBlank reports whether all three texts are empty.
func (r SettingsRow) IsBlank() bool {
	return Row{Variable: r.Variable, Expression: r.Expression, Comment: r.Comment}.IsBlank()
}

// Geometry is the window placement carried through the settings untouched.
type Geometry struct {
	Top    float64
	Left   float64
	Height float64
	Width  float64
}

// Geometry returns the geometry part of the snapshot.
func (s *Settings) Geometry() Geometry {
	return Geometry{Top: s.Top, Left: s.Left, Height: s.Height, Width: s.Width}
}

// DefaultSettings is used when no settings have been saved yet.
func DefaultSettings() *Settings {
	return &Settings{
		Top:    16,
		Left:   16,
		Height: 200,
		Width:  600,
		Rows: []SettingsRow{
			{Variable: "v0", Expression: "123"},
			{Expression: "v0*2"},
		},
	}
}

// LoadError reports settings that exist but cannot be used.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load settings %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// errMissingRows is returned when the Rows list is absent or null.
var errMissingRows = errors.New("missing Rows")

// Load reads settings from res. A missing resource yields DefaultSettings;
// an unreadable or malformed one yields a *LoadError.
func Load(res Resource) (*Settings, error) {
	ok, err := res.Exists()
	if err != nil {
		return nil, &LoadError{Name: res.Name(), Err: err}
	}
	if !ok {
		return DefaultSettings(), nil
	}
	data, err := res.Read()
	if err != nil {
		return nil, &LoadError{Name: res.Name(), Err: err}
	}
	s, err := DecodeSettings(data)
	if err != nil {
		return nil, &LoadError{Name: res.Name(), Err: err}
	}
	return s, nil
}

// DecodeSettings parses the JSON settings text. Unknown fields are ignored;
// the Rows list is required. Height and Width are raised to their floors.
func DecodeSettings(data []byte) (*Settings, error) {
	var raw struct {
		Top    float64
		Left   float64
		Height float64
		Width  float64
		Rows   *[]SettingsRow
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if raw.Rows == nil {
		return nil, errMissingRows
	}
	s := &Settings{
		Top:    raw.Top,
		Left:   raw.Left,
		Height: raw.Height,
		Width:  raw.Width,
		Rows:   *raw.Rows,
	}
	s.clamp()
	return s, nil
}

func (s *Settings) clamp() {
	if s.Height < MinHeight {
		s.Height = MinHeight
	}
	if s.Width < MinWidth {
		s.Width = MinWidth
	}
}

// Encode renders s as indented JSON with fields in schema order.
// Non-ASCII text and HTML characters are written verbatim.
func Encode(s *Settings) ([]byte, error) {
	out := *s
	if out.Rows == nil {
		out.Rows = []SettingsRow{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// TrimRows drops blank rows from the end so that at most one blank row
// follows the last non-blank row.
func TrimRows(rows []SettingsRow) []SettingsRow {
	n := len(rows)
	for n > 1 && rows[n-1].IsBlank() && rows[n-2].IsBlank() {
		n--
	}
	return rows[:n]
}

// Save writes s to res unless the encoded text equals what res already
// holds. Before overwriting, the previous contents are moved to the backup
// sibling. It reports whether anything was written.
func Save(res Resource, s *Settings) (bool, error) {
	trimmed := *s
	trimmed.Rows = TrimRows(s.Rows)
	data, err := Encode(&trimmed)
	if err != nil {
		return false, err
	}

	exists, err := res.Exists()
	if err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}
	if exists {
		current, err := res.Read()
		if err != nil {
			return false, fmt.Errorf("save settings: %w", err)
		}
		if bytes.Equal(current, data) {
			return false, nil
		}
		if err := res.Backup(); err != nil {
			return false, fmt.Errorf("save settings: %w", err)
		}
	}
	if err := res.Write(data); err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}
	return true, nil
}

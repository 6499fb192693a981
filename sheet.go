package rowcalc

import "go.uber.org/zap"

// maxResweeps bounds how often listener edits made during a sweep can
// trigger another sweep.
const maxResweeps = 8

// Sheet owns a Store and recalculates it after every edit. It is the entry
// point a UI talks to. A Sheet is not safe for concurrent use.
type Sheet struct {
	opts     *Options
	store    *Store
	engine   *Engine
	geometry Geometry
	report   Report
	loadErr  error

	sweeping bool
	pending  bool
}

// NewSheet builds a Sheet from a settings snapshot and runs the first sweep.
// A nil snapshot means DefaultSettings.
func NewSheet(settings *Settings, opts ...Option) *Sheet {
	if settings == nil {
		settings = DefaultSettings()
	}
	s := newSheet(buildOptions(opts), settings)
	s.recalculate()
	return s
}

// OpenSheet loads settings from res and builds a Sheet from them. It never
// fails: settings that cannot be loaded leave a single blank row, the load
// error becomes the status text and is kept in LoadErr.
func OpenSheet(res Resource, opts ...Option) *Sheet {
	o := buildOptions(opts)
	settings, err := Load(res)
	if err == nil {
		o.logger.Debug("settings loaded", zap.String("name", res.Name()), zap.Int("rows", len(settings.Rows)))
		s := newSheet(o, settings)
		s.recalculate()
		return s
	}

	o.logger.Warn("settings unusable, starting empty", zap.String("name", res.Name()), zap.Error(err))
	fallback := DefaultSettings()
	fallback.Rows = nil
	s := newSheet(o, fallback)
	s.recalculate()
	s.loadErr = err
	s.report.Status = err.Error()
	return s
}

func newSheet(o *Options, settings *Settings) *Sheet {
	store := NewStore(o.newID)
	for _, r := range settings.Rows {
		store.Add(r.Variable, r.Expression, r.Comment)
	}
	for _, l := range o.listeners {
		store.AddListener(l)
	}
	return &Sheet{
		opts:     o,
		store:    store,
		engine:   newEngine(o),
		geometry: settings.Geometry(),
	}
}

// RowChanged is called after the row at pos was edited. It always runs a
// full sweep; there is no partial recomputation. Every sweep leaves exactly
// one blank row at the end.
func (s *Sheet) RowChanged(pos int) Report {
	s.opts.logger.Debug("row changed", zap.Int("row", pos))
	return s.recalculate()
}

// Recalculate runs a sweep without an associated edit.
func (s *Sheet) Recalculate() Report {
	return s.recalculate()
}

func (s *Sheet) recalculate() Report {
	if s.sweeping {
		s.pending = true
		return s.report
	}
	s.sweeping = true
	defer func() { s.sweeping = false }()

	for i := 0; i < maxResweeps; i++ {
		s.pending = false
		s.report = s.engine.Recalculate(s.store)
		if n := s.store.TrimTrailingBlanks(); n > 0 {
			s.opts.logger.Debug("removed surplus trailing blank rows", zap.Int("removed", n))
		}
		for _, l := range s.opts.listeners {
			l.Recalculated(s.report)
		}
		if !s.pending {
			return s.report
		}
	}
	s.opts.logger.Warn("listeners kept editing during sweeps", zap.Int("sweeps", maxResweeps))
	return s.report
}

// SetVariable replaces the variable name at pos and recalculates.
func (s *Sheet) SetVariable(pos int, text string) error {
	if err := s.store.SetVariable(pos, text); err != nil {
		return err
	}
	s.RowChanged(pos)
	return nil
}

// SetExpression replaces the expression at pos and recalculates.
func (s *Sheet) SetExpression(pos int, text string) error {
	if err := s.store.SetExpression(pos, text); err != nil {
		return err
	}
	s.RowChanged(pos)
	return nil
}

// SetComment replaces the comment at pos and recalculates.
func (s *Sheet) SetComment(pos int, text string) error {
	if err := s.store.SetComment(pos, text); err != nil {
		return err
	}
	s.RowChanged(pos)
	return nil
}

// InsertRowAfter inserts a blank row after pos (-1 for the top) and returns
// its position. Rows below shift down by one. A blank row added at the end
// merges with the trailing blank row, whose position is returned.
func (s *Sheet) InsertRowAfter(pos int) (int, error) {
	at, err := s.store.InsertBlankAfter(pos)
	if err != nil {
		return 0, err
	}
	s.recalculate()
	if last := s.store.Len() - 1; at > last {
		at = last
	}
	return at, nil
}

// DeleteRow removes the row at pos. Refused deletes return an error
// wrapping ErrDeleteRefused and leave the sheet unchanged.
func (s *Sheet) DeleteRow(pos int) error {
	if err := s.store.Delete(pos); err != nil {
		s.opts.logger.Debug("delete refused", zap.Int("row", pos), zap.Error(err))
		return err
	}
	s.recalculate()
	return nil
}

// Len returns the number of rows, including the trailing blank row.
func (s *Sheet) Len() int { return s.store.Len() }

// Row returns a copy of the row at pos.
func (s *Sheet) Row(pos int) (Row, error) { return s.store.Row(pos) }

// Rows returns a copy of all rows.
func (s *Sheet) Rows() []Row { return s.store.Rows() }

// IndexOf returns the position of the row with the given ID, or -1.
func (s *Sheet) IndexOf(id string) int { return s.store.IndexOf(id) }

// Status returns "OK" or the accumulated error text of the last sweep.
func (s *Sheet) Status() string { return s.report.Status }

// Report returns the summary of the last sweep.
func (s *Sheet) Report() Report { return s.report }

// LoadErr returns the error that prevented the settings from loading, if any.
func (s *Sheet) LoadErr() error { return s.loadErr }

// Geometry returns the window geometry carried through from the settings.
func (s *Sheet) Geometry() Geometry { return s.geometry }

// SetGeometry records the window geometry to persist on the next save.
func (s *Sheet) SetGeometry(g Geometry) { s.geometry = g }

// Snapshot returns the persistable state of the sheet.
func (s *Sheet) Snapshot() *Settings {
	rows := s.store.Rows()
	out := &Settings{
		Top:    s.geometry.Top,
		Left:   s.geometry.Left,
		Height: s.geometry.Height,
		Width:  s.geometry.Width,
		Rows:   make([]SettingsRow, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = SettingsRow{Variable: r.Variable, Expression: r.Expression, Comment: r.Comment}
	}
	return out
}

// Save persists the sheet to res. See the package-level Save for the
// rewrite and backup policy.
func (s *Sheet) Save(res Resource) (bool, error) {
	written, err := Save(res, s.Snapshot())
	if err != nil {
		return false, err
	}
	if written {
		s.opts.logger.Debug("settings saved", zap.String("name", res.Name()))
	} else {
		s.opts.logger.Debug("settings unchanged, save skipped", zap.String("name", res.Name()))
	}
	return written, nil
}

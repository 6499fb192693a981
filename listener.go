package rowcalc

// RowListener is notified about structural changes to a Store and about
// completed sweeps. Indexes are positions at the time of the event; rows
// below an inserted or removed row have shifted by one.
type RowListener interface {
	// RowInserted is called after a blank row has been placed at index.
	RowInserted(index int)

	// RowRemoved is called after the row at index has been deleted.
	RowRemoved(index int)

	// Recalculated is called after every sweep.
	Recalculated(report Report)
}

// RowListenerFuncs adapts plain functions to RowListener. Nil fields are skipped.
type RowListenerFuncs struct {
	OnInserted     func(index int)
	OnRemoved      func(index int)
	OnRecalculated func(report Report)
}

func (f RowListenerFuncs) RowInserted(index int) {
	if f.OnInserted != nil {
		f.OnInserted(index)
	}
}

func (f RowListenerFuncs) RowRemoved(index int) {
	if f.OnRemoved != nil {
		f.OnRemoved(index)
	}
}

func (f RowListenerFuncs) Recalculated(report Report) {
	if f.OnRecalculated != nil {
		f.OnRecalculated(report)
	}
}

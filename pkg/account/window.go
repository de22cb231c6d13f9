package account

import "time"

// ExemptionWindow is a configured [Start, End] range during which invite
// enforcement is suspended: new accounts are created without a code and
// carry no invite provenance.
type ExemptionWindow struct {
	Start time.Time
	End   time.Time
}

// Active reports whether now falls inside a well-formed window. A window
// with a missing bound or an inverted range is never active.
func (w ExemptionWindow) Active(now time.Time) bool {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return false
	}
	return !now.Before(w.Start) && !now.After(w.End)
}

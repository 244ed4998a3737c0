package schedule

import "time"

// AddSession appends an empty session to a weekly schedule.
// PRE: m.Type is Weekly
// POST: Returns a new model one session longer; m is untouched
func AddSession(m Model) (Model, error) {
	if m.Type != Weekly {
		return m, ErrSingleFixed
	}
	out := m.Clone()
	out.Sessions = append(out.Sessions, Session{})
	return out, nil
}

// EditField sets one field of session i. Values are stored as given: there
// is no time ordering or date format check.
// PRE: 0 <= i < len(m.Sessions)
// POST: Returns a new model with the field replaced, or m and an error when
// the session is out of range or already past
func EditField(m Model, i int, field, value string, today time.Time) (Model, error) {
	if i < 0 || i >= len(m.Sessions) {
		return m, ErrIndexOutOfRange
	}
	if m.IsLocked(i, today) {
		return m, ErrPastSession
	}
	out := m.Clone()
	s := out.Sessions[i]
	switch field {
	case FieldDate:
		s.Date = value
	case FieldTimeFrom:
		s.TimeFrom = value
	case FieldTimeTo:
		s.TimeTo = value
	default:
		return m, ErrUnknownField
	}
	out.Sessions[i] = s
	return out, nil
}

// Removal is the two-phase delete state: Idle, or PendingConfirm(index).
// The zero value is Idle.
type Removal struct {
	index   int
	pending bool
}

// Pending returns the index awaiting confirmation, if any.
func (r Removal) Pending() (int, bool) {
	return r.index, r.pending
}

// Request moves to PendingConfirm(i). A request made while another is
// pending replaces it. The guard fails for single classes, past sessions and
// bad indexes, in which case r is returned unchanged.
func (r Removal) Request(m Model, i int, today time.Time) (Removal, error) {
	if m.Type != Weekly {
		return r, ErrSingleFixed
	}
	if i < 0 || i >= len(m.Sessions) {
		return r, ErrIndexOutOfRange
	}
	if m.IsLocked(i, today) {
		return r, ErrPastSession
	}
	return Removal{index: i, pending: true}, nil
}

// Confirm splices out the pending session and returns to Idle. The session
// must still be in the future; a pending session that has become past since
// the request is kept and the removal dropped.
// POST: remaining sessions keep their relative order; m is untouched
func (r Removal) Confirm(m Model, today time.Time) (Model, Removal, error) {
	if !r.pending {
		return m, r, ErrNothingPending
	}
	if r.index >= len(m.Sessions) {
		return m, Removal{}, ErrIndexOutOfRange
	}
	if m.IsLocked(r.index, today) {
		return m, Removal{}, ErrPastSession
	}
	out := Model{Type: m.Type, Sessions: make([]Session, 0, len(m.Sessions)-1)}
	out.Sessions = append(out.Sessions, m.Sessions[:r.index]...)
	out.Sessions = append(out.Sessions, m.Sessions[r.index+1:]...)
	return out, Removal{}, nil
}

// Cancel returns to Idle without touching the schedule.
func (r Removal) Cancel() Removal {
	return Removal{}
}

package schedule

import "errors"

// ClassType distinguishes a one-off class from one with an admin-managed session list.
type ClassType string

const (
	Single ClassType = "singleClass"
	Weekly ClassType = "classByWeeks"
)

// DateLayout is the DD/MM/YYYY form every session date is stored in.
const DateLayout = "02/01/2006"

// Session fields addressable through EditField.
const (
	FieldDate     = "date"
	FieldTimeFrom = "timeFrom"
	FieldTimeTo   = "timeTo"
)

// Domain errors
var (
	ErrInvalidClassType = errors.New("class type must be singleClass or classByWeeks")
	ErrSingleFixed      = errors.New("a single class always has exactly one session")
	ErrPastSession      = errors.New("session date has already passed")
	ErrIndexOutOfRange  = errors.New("session index out of range")
	ErrUnknownField     = errors.New("field must be one of: date, timeFrom, timeTo")
	ErrNothingPending   = errors.New("no removal is pending")
)

// Session is one scheduled occurrence of a class.
// Date is empty only for a single class whose day has not been picked yet.
type Session struct {
	Date     string `json:"date,omitempty" yaml:"date"`
	TimeFrom string `json:"timeFrom" yaml:"timeFrom"`
	TimeTo   string `json:"timeTo" yaml:"timeTo"`
}

// Model is the ordered session list of a class.
// Order is display order, not chronological order.
type Model struct {
	Type     ClassType `json:"classType"`
	Sessions []Session `json:"sessions"`
}

// NewSingle creates a single-occurrence schedule.
func NewSingle(s Session) Model {
	return Model{Type: Single, Sessions: []Session{s}}
}

// NewWeekly creates a weekly schedule holding a copy of sessions.
func NewWeekly(sessions ...Session) Model {
	return Model{Type: Weekly, Sessions: append([]Session{}, sessions...)}
}

// Validate checks the shape invariant of the model.
// PRE: Model is populated
// POST: Returns nil if a Single model holds exactly one session
func (m Model) Validate() error {
	switch m.Type {
	case Single:
		if len(m.Sessions) != 1 {
			return ErrSingleFixed
		}
	case Weekly:
	default:
		return ErrInvalidClassType
	}
	return nil
}

// Clone returns a model that shares no backing array with m.
func (m Model) Clone() Model {
	out := Model{Type: m.Type}
	if m.Sessions != nil {
		out.Sessions = append(make([]Session, 0, len(m.Sessions)), m.Sessions...)
	}
	return out
}

// Span returns the label shown on the class summary: the single date,
// or "first - last" in display order.
func (m Model) Span() string {
	switch len(m.Sessions) {
	case 0:
		return ""
	case 1:
		return m.Sessions[0].Date
	}
	return m.Sessions[0].Date + " - " + m.Sessions[len(m.Sessions)-1].Date
}

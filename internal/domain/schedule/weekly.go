package schedule

import (
	"errors"
	"strings"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// MaxWeeklySpanDays bounds the date range a weekly class may be expanded over.
const MaxWeeklySpanDays = 366

var (
	ErrInvalidDay   = errors.New("day must be a valid day of the week")
	ErrInvalidRange = errors.New("start date must not be after end date")
	ErrRangeTooLong = errors.New("weekly classes may span at most one year")
)

// WeeklySlot is one recurring row entered when a weekly class is created.
type WeeklySlot struct {
	Day      string `json:"dateOfWeek"`
	TimeFrom string `json:"timeFrom"`
	TimeTo   string `json:"timeTo"`
}

// Validate checks if the slot names a real weekday.
// PRE: WeeklySlot struct is populated
// POST: Returns nil if valid, error otherwise
func (w WeeklySlot) Validate() error {
	if _, ok := weekday(w.Day); !ok {
		return ErrInvalidDay
	}
	return nil
}

// ExpandWeekly resolves recurring slots into dated sessions between from and
// to inclusive. Sessions come out in date order, slots on the same day in the
// order they were given.
// PRE: every slot is valid
// POST: Returns a Weekly model; empty when no slot day falls in the range.
// A range longer than MaxWeeklySpanDays days is refused with ErrRangeTooLong
func ExpandWeekly(slots []WeeklySlot, from, to time.Time) (Model, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if from.After(to) {
		return Model{}, ErrInvalidRange
	}
	if to.After(from.AddDate(0, 0, MaxWeeklySpanDays-1)) {
		return Model{}, ErrRangeTooLong
	}
	byDay := make(map[time.Weekday][]WeeklySlot)
	for _, s := range slots {
		wd, ok := weekday(s.Day)
		if !ok {
			return Model{}, ErrInvalidDay
		}
		byDay[wd] = append(byDay[wd], s)
	}

	m := Model{Type: Weekly, Sessions: []Session{}}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, s := range byDay[d.Weekday()] {
			m.Sessions = append(m.Sessions, Session{
				Date:     d.Format(DateLayout),
				TimeFrom: s.TimeFrom,
				TimeTo:   s.TimeTo,
			})
		}
	}
	return m, nil
}

func weekday(day string) (time.Weekday, bool) {
	day = strings.ToLower(strings.TrimSpace(day))
	for i, d := range []string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday} {
		if d == day {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package schedule

import (
	"strconv"
	"strings"
	"time"
)

// IsPast reports whether a DD/MM/YYYY date falls strictly before today's
// local midnight. Missing or malformed dates are never past, so a bad value
// can not lock a session.
// INVARIANT: pure, no side effects
func IsPast(date string, today time.Time) bool {
	d, ok := parseDate(date, today.Location())
	if !ok {
		return false
	}
	y, m, dd := today.Date()
	midnight := time.Date(y, m, dd, 0, 0, 0, 0, today.Location())
	return d.Before(midnight)
}

// IsLocked reports whether session i of m can no longer be edited or removed.
func (m Model) IsLocked(i int, today time.Time) bool {
	if i < 0 || i >= len(m.Sessions) {
		return false
	}
	return IsPast(m.Sessions[i].Date, today)
}

// parseDate accepts D/M/YYYY with or without zero padding and rejects
// day/month overflow instead of normalising it.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

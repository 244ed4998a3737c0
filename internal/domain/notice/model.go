package notice

import "time"

// Notice kinds
const (
	KindSuccess = "success"
	KindError   = "error"
)

// DefaultTTL is how long a notice stays on screen.
const DefaultTTL = 3 * time.Second

// Notice is the blocking banner shown after a request finishes. It says
// only whether the request worked.
type Notice struct {
	Kind         string    `json:"variant"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ShownAt      time.Time `json:"shownAt"`
	VisibleUntil time.Time `json:"visibleUntil"`
}

// Success builds a success notice shown at now.
func Success(message string, now time.Time) Notice {
	return Notice{Kind: KindSuccess, Title: "Success", Message: message, ShownAt: now, VisibleUntil: now.Add(DefaultTTL)}
}

// Failure builds an error notice shown at now.
func Failure(message string, now time.Time) Notice {
	return Notice{Kind: KindError, Title: "Error", Message: message, ShownAt: now, VisibleUntil: now.Add(DefaultTTL)}
}

// IsVisible reports whether the notice is still on screen at now.
// INVARIANT: Notice fields are not mutated
func (n Notice) IsVisible(now time.Time) bool {
	return !n.ShownAt.IsZero() && now.Before(n.VisibleUntil)
}

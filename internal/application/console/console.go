// Package console holds the editing state of each signed-in admin: open
// class drafts, unit pages and the current notice. Platform calls are made
// without holding the console lock so a slow platform never blocks edits.
package console

import (
	"errors"
	"sync"
	"time"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/navigator"
	"ezlearn/internal/domain/notice"
	"ezlearn/internal/domain/schedule"
)

var (
	ErrClassNotOpen = errors.New("class is not open in this console")
	ErrPageNotOpen  = errors.New("unit page is not open in this console")
)

// PreviewStore keeps locally chosen replacement media for preview.
type PreviewStore interface {
	SavePreview(filename string, data []byte) (string, error)
}

// Deps holds what every console needs.
type Deps struct {
	Platform platform.Platform
	Previews PreviewStore
	Now      func() time.Time
}

// Console is one admin's workspace.
type Console struct {
	mu      sync.Mutex
	sess    platform.Session
	deps    Deps
	classes map[string]*classEdit
	pages   map[string]*page
	notice  notice.Notice
}

func newConsole(sess platform.Session, deps Deps) *Console {
	return &Console{
		sess:    sess,
		deps:    deps,
		classes: make(map[string]*classEdit),
		pages:   make(map[string]*page),
	}
}

// Session returns the identity the console calls the platform with.
func (c *Console) Session() platform.Session {
	return c.sess
}

// Notice returns the banner on screen now, if any.
func (c *Console) Notice() (notice.Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notice
	return n, n.IsVisible(c.deps.Now())
}

func (c *Console) succeed(msg string) {
	c.notice = notice.Success(msg, c.deps.Now())
}

func (c *Console) fail(msg string) {
	c.notice = notice.Failure(msg, c.deps.Now())
}

// close cancels every lookup still in flight.
func (c *Console) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pages {
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
}

// rejections are refused edits: the view is unchanged and nothing failed.
var rejections = []error{
	schedule.ErrSingleFixed,
	schedule.ErrPastSession,
	schedule.ErrIndexOutOfRange,
	schedule.ErrUnknownField,
	schedule.ErrNothingPending,
	class.ErrNameLocked,
	class.ErrUnknownTeacher,
	class.ErrNegativePrice,
	navigator.ErrUnknownTab,
	navigator.ErrUnknownDirection,
	navigator.ErrNotOnOverview,
	navigator.ErrNotEditing,
	navigator.ErrNotLoaded,
}

// IsRejected reports whether err is a refused edit rather than a failure.
func IsRejected(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// Workspace maps session tokens to consoles.
type Workspace struct {
	mu       sync.Mutex
	consoles map[string]*Console
	deps     Deps
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(deps Deps) *Workspace {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Workspace{consoles: make(map[string]*Console), deps: deps}
}

// Open returns the console for token, creating it on first use.
func (w *Workspace) Open(token string, sess platform.Session) *Console {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.consoles[token]; ok {
		return c
	}
	c := newConsole(sess, w.deps)
	w.consoles[token] = c
	return c
}

// Close drops the console for token and cancels its lookups.
func (w *Workspace) Close(token string) {
	w.mu.Lock()
	c, ok := w.consoles[token]
	delete(w.consoles, token)
	w.mu.Unlock()
	if ok {
		c.close()
	}
}

// Len returns how many consoles are open.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.consoles)
}

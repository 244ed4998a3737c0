// Package navigator holds the page state of one course unit: which tab is
// showing, the overview edit draft, the media preview and the links to the
// neighbouring units.
package navigator

import (
	"errors"

	"ezlearn/internal/domain/course"
)

// Tab is the visible panel of the unit page.
type Tab string

const (
	Overview Tab = "overview"
	Lecture  Tab = "lecture"
)

// EditMode is the nested state of the overview panel.
type EditMode string

const (
	Viewing EditMode = "viewing"
	Editing EditMode = "editing"
)

// Direction picks a neighbour.
type Direction string

const (
	Previous Direction = "previous"
	Next     Direction = "next"
)

// Errors returned for moves the page does not offer. Callers treat them as
// disabled controls, not failures.
var (
	ErrUnknownTab       = errors.New("tab must be overview or lecture")
	ErrUnknownDirection = errors.New("direction must be previous or next")
	ErrNotOnOverview    = errors.New("overview editor is only available on the overview tab")
	ErrNotEditing       = errors.New("overview editor is not open")
	ErrNotLoaded        = errors.New("unit content has not been resolved yet")
)

// Target identifies the unit a page shows and who is looking at it.
type Target struct {
	CourseID string `json:"courseId"`
	UnitID   string `json:"unitId"`
	ViewerID string `json:"viewerId"`
}

// Replacement is a media file picked on the page but not yet submitted.
type Replacement struct {
	Filename    string
	ContentType string
	Data        []byte
	// PreviewRef points at the local copy shown until the page is submitted.
	PreviewRef string
}

// Submission is what the page-level "save changes" action sends.
type Submission struct {
	UnitID      string
	CourseID    string
	Overview    string
	Replacement *Replacement
}

// Navigator is the state machine of a single unit page.
// It is not safe for concurrent use; callers serialise access.
type Navigator struct {
	target     Target
	generation uint64

	resolution course.Resolution
	loaded     bool

	tab       Tab
	mode      EditMode
	isLoading bool

	overview string  // what the page displays
	draft    *string // EditDraft; non-nil only while Editing

	mediaRef    string
	mediaKind   course.MediaKind
	replacement *Replacement
}

// New creates a page for target showing the overview tab.
func New(target Target) *Navigator {
	return &Navigator{target: target, tab: Overview, mode: Viewing}
}

// Target returns the unit the page currently points at.
func (n *Navigator) Target() Target { return n.target }

// BeginResolve points the page at target and returns the generation a
// resolution must carry to be applied. Every call supersedes the previous
// one, so answers to older lookups are dropped.
func (n *Navigator) BeginResolve(target Target) uint64 {
	n.target = target
	n.generation++
	return n.generation
}

// Generation returns the generation of the latest lookup.
func (n *Navigator) Generation() uint64 { return n.generation }

// ApplyResolution installs a lookup result. It returns false, leaving the
// page untouched, when gen belongs to a superseded lookup.
func (n *Navigator) ApplyResolution(gen uint64, res course.Resolution) bool {
	if gen != n.generation {
		return false
	}
	n.resolution = res
	n.loaded = true
	n.overview = res.Content.Overview
	n.mediaRef = res.Content.MediaRef
	n.mediaKind = course.ParseMediaKind(string(res.Content.MediaKind))
	n.replacement = nil
	if n.tab == Lecture {
		n.isLoading = n.mediaKind == course.Document
	}
	return true
}

// SwitchTab shows tab. Opening the lecture tab on a document starts a load
// that only DocumentLoaded ends; videos are not tracked.
func (n *Navigator) SwitchTab(tab Tab) error {
	switch tab {
	case Overview:
		n.tab = Overview
		n.isLoading = false
	case Lecture:
		n.tab = Lecture
		n.isLoading = n.mediaKind == course.Document
	default:
		return ErrUnknownTab
	}
	return nil
}

// DocumentLoaded is the embedded viewer's signal that rendering finished.
func (n *Navigator) DocumentLoaded() {
	n.isLoading = false
}

// BeginEdit opens the overview editor seeded with the displayed text.
func (n *Navigator) BeginEdit() error {
	if n.tab != Overview {
		return ErrNotOnOverview
	}
	if n.mode == Editing {
		return nil
	}
	seed := n.overview
	n.draft = &seed
	n.mode = Editing
	return nil
}

// Type replaces the draft text. The displayed overview does not change.
func (n *Navigator) Type(text string) error {
	if n.mode != Editing {
		return ErrNotEditing
	}
	*n.draft = text
	return nil
}

// SaveDraft shows the draft text and closes the editor. Nothing is sent to
// the platform; only Submission reaches the backing store.
func (n *Navigator) SaveDraft() error {
	if n.mode != Editing {
		return ErrNotEditing
	}
	n.overview = *n.draft
	n.closeEditor()
	return nil
}

// CancelEdit discards the draft and keeps the displayed text.
func (n *Navigator) CancelEdit() error {
	if n.mode != Editing {
		return ErrNotEditing
	}
	n.closeEditor()
	return nil
}

// ReplaceMedia previews a locally picked file in place of the unit's media.
// It works in either edit mode and is only persisted by Submission.
func (n *Navigator) ReplaceMedia(r Replacement) {
	n.replacement = &r
	n.mediaRef = r.PreviewRef
	n.mediaKind = course.MediaKindFromContentType(r.ContentType)
	if n.tab == Lecture {
		n.isLoading = n.mediaKind == course.Document
	}
}

// CanGo reports whether the neighbour control for dir is enabled.
func (n *Navigator) CanGo(dir Direction) bool {
	return n.neighbour(dir) != ""
}

// GoTo follows the neighbour link in dir. When the neighbour is missing the
// call changes nothing and returns ok=false. Otherwise the page resets to
// the overview tab, drops any unsaved draft and replacement without asking,
// and returns the new target with the generation its lookup must carry.
// Until that lookup is applied the page holds no content, so it can neither
// be submitted nor navigated further.
func (n *Navigator) GoTo(dir Direction) (target Target, gen uint64, ok bool, err error) {
	if dir != Previous && dir != Next {
		return Target{}, 0, false, ErrUnknownDirection
	}
	id := n.neighbour(dir)
	if id == "" {
		return n.target, n.generation, false, nil
	}
	next := n.target
	next.UnitID = id
	n.tab = Overview
	n.isLoading = false
	n.closeEditor()
	n.unload()
	return next, n.BeginResolve(next), true, nil
}

// Submission builds the page-level save request from what is displayed.
func (n *Navigator) Submission() (Submission, error) {
	if !n.loaded {
		return Submission{}, ErrNotLoaded
	}
	return Submission{
		UnitID:      n.target.UnitID,
		CourseID:    n.target.CourseID,
		Overview:    n.overview,
		Replacement: n.replacement,
	}, nil
}

func (n *Navigator) neighbour(dir Direction) string {
	if !n.loaded {
		return ""
	}
	switch {
	case dir == Previous && n.resolution.HasPrevious():
		return n.resolution.PreviousUnitID
	case dir == Next && n.resolution.HasNext():
		return n.resolution.NextUnitID
	}
	return ""
}

func (n *Navigator) unload() {
	n.loaded = false
	n.resolution = course.Resolution{}
	n.overview = ""
	n.mediaRef = ""
	n.mediaKind = ""
	n.replacement = nil
}

func (n *Navigator) closeEditor() {
	n.draft = nil
	n.mode = Viewing
}

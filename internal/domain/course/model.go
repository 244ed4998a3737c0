package course

import (
	"errors"
	"strings"
)

// MediaKind is how a unit's lecture asset is presented.
type MediaKind string

const (
	Document MediaKind = "pdf"
	Video    MediaKind = "mp4"
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("unit title cannot be empty")
	ErrEmptyGroupName  = errors.New("group name cannot be empty")
	ErrEmptyCourseName = errors.New("course name cannot be empty")
	ErrUnitNotFound    = errors.New("unit not found in course")
	ErrDuplicateUnitID = errors.New("unit ID appears more than once in course")
)

// Unit is one lecture item: overview text plus a single media asset.
type Unit struct {
	ID        string    `json:"_id,omitempty" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Overview  string    `json:"overview" yaml:"overview"`
	MediaRef  string    `json:"fileUrl" yaml:"fileUrl"`
	MediaKind MediaKind `json:"lectureType" yaml:"lectureType"`
}

// Group is a chapter of a course holding units in teaching order.
type Group struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Units []Unit `yaml:"units"`
}

// Course is an ordered list of groups.
type Course struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Language string  `yaml:"language"`
	Groups   []Group `yaml:"groups"`
}

// Resolution is the answer to a chain lookup: the unit, the chapter it sits
// in and its sequential neighbours. A missing neighbour is "".
type Resolution struct {
	Content         Unit   `json:"lectureContent"`
	ParentGroupName string `json:"parentUnit"`
	PreviousUnitID  string `json:"lastLectureId"`
	NextUnitID      string `json:"nextLectureId"`
}

// HasPrevious reports whether there is a unit before this one.
func (r Resolution) HasPrevious() bool { return r.PreviousUnitID != "" }

// HasNext reports whether there is a unit after this one.
func (r Resolution) HasNext() bool { return r.NextUnitID != "" }

// Validate checks if the Unit has valid data.
// PRE: Unit struct is populated
// POST: Returns nil if valid, error otherwise
func (u *Unit) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Validate checks the course, its groups and that unit ids are unique
// across the whole course.
// PRE: Course struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCourseName
	}
	seen := make(map[string]bool)
	for _, g := range c.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return ErrEmptyGroupName
		}
		for _, u := range g.Units {
			if err := u.Validate(); err != nil {
				return err
			}
			if seen[u.ID] {
				return ErrDuplicateUnitID
			}
			seen[u.ID] = true
		}
	}
	return nil
}

// Resolve finds unitID and its neighbours in teaching order. The chain runs
// straight across chapter boundaries: the last unit of one group links to
// the first unit of the next non-empty group.
// PRE: unit ids are unique within the course
// POST: Returns ErrUnitNotFound if the unit is not in this course
func (c *Course) Resolve(unitID string) (Resolution, error) {
	type entry struct {
		unit  Unit
		group string
	}
	var flat []entry
	for _, g := range c.Groups {
		for _, u := range g.Units {
			flat = append(flat, entry{unit: u, group: g.Name})
		}
	}
	for i, e := range flat {
		if e.unit.ID != unitID {
			continue
		}
		res := Resolution{Content: e.unit, ParentGroupName: e.group}
		if i > 0 {
			res.PreviousUnitID = flat[i-1].unit.ID
		}
		if i < len(flat)-1 {
			res.NextUnitID = flat[i+1].unit.ID
		}
		return res, nil
	}
	return Resolution{}, ErrUnitNotFound
}

package console

import (
	"context"
	"log/slog"

	"ezlearn/internal/application/orchestrators"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/teacher"
)

// Notice messages for class requests.
const (
	MsgClassSaved      = "Class updated successfully"
	MsgClassSaveFailed = "Class update failed"
	MsgClassCreated    = "Class created successfully"
	MsgClassNotCreated = "Class creation failed"
)

type classEdit struct {
	record   class.Class
	students []class.Student
	draft    *class.Draft
	teachers []teacher.Candidate
	// language the teacher list was fetched for
	teachersFor string
}

// ClassView is what the class detail screen renders.
type ClassView struct {
	Record           class.Class         `json:"classInfo"`
	Draft            class.Class         `json:"draft"`
	Students         []class.Student     `json:"studentInfo"`
	PaidStudents     int                 `json:"paidStudents"`
	Teachers         []teacher.Candidate `json:"teachers"`
	Span             string              `json:"span"`
	NameLocked       bool                `json:"nameLocked"`
	LockedSessions   []int               `json:"lockedSessions"`
	PendingRemoval   *int                `json:"pendingRemoval,omitempty"`
	PendingThumbnail string              `json:"pendingThumbnail,omitempty"`
}

// ClassPatch carries the scalar draft fields an admin changed. Nil fields
// are left alone.
type ClassPatch struct {
	Name      *string
	Price     *float64
	ClassURL  *string
	TeacherID *string
}

func (c *Console) viewClass(e *classEdit) ClassView {
	today := c.deps.Now()
	d := e.draft
	v := ClassView{
		Record:         e.record,
		Draft:          d.Class,
		Students:       e.students,
		Teachers:       e.teachers,
		Span:           e.record.Schedule.Span(),
		NameLocked:     d.NameLocked(),
		LockedSessions: []int{},
	}
	v.Draft.Schedule = d.Schedule.Clone()
	for _, s := range e.students {
		if s.HasPaid() {
			v.PaidStudents++
		}
	}
	for i := range d.Schedule.Sessions {
		if d.Schedule.IsLocked(i, today) {
			v.LockedSessions = append(v.LockedSessions, i)
		}
	}
	if i, ok := d.PendingRemoval(); ok {
		v.PendingRemoval = &i
	}
	if d.Thumbnail != nil {
		v.PendingThumbnail = d.Thumbnail.Filename
	}
	return v
}

// OpenClass fetches a class and starts a fresh draft of it, replacing any
// draft already open for the same id. The teacher list for the class
// language is fetched too; failing to get it leaves the list empty.
// PRE: classID is non-empty
// POST: On error no draft is opened or replaced
func (c *Console) OpenClass(ctx context.Context, classID string) (ClassView, error) {
	detail, err := orchestrators.ExecuteLoadClass(ctx,
		orchestrators.LoadClassInput{Session: c.sess, ClassID: classID},
		orchestrators.ClassEditDeps{Platform: c.deps.Platform})
	if err != nil {
		return ClassView{}, err
	}

	c.mu.Lock()
	e := &classEdit{
		record:   detail.Class,
		students: detail.Students,
		draft:    class.BeginEdit(detail.Class),
		teachers: []teacher.Candidate{},
	}
	if e.students == nil {
		e.students = []class.Student{}
	}
	c.classes[classID] = e
	c.mu.Unlock()

	if _, err := c.Teachers(ctx, classID); err != nil {
		slog.Warn("class_event", "event", "teacher_list_unavailable", "class_id", classID, "error", err)
	}
	return c.Class(classID)
}

// Class returns the current view of an open class.
func (c *Console) Class(classID string) (ClassView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.classes[classID]
	if !ok {
		return ClassView{}, ErrClassNotOpen
	}
	return c.viewClass(e), nil
}

// Teachers returns the candidates for the class language, fetching them
// again whenever the language differs from the one last fetched.
func (c *Console) Teachers(ctx context.Context, classID string) ([]teacher.Candidate, error) {
	c.mu.Lock()
	e, ok := c.classes[classID]
	if !ok {
		c.mu.Unlock()
		return nil, ErrClassNotOpen
	}
	language := e.draft.Language
	if e.teachersFor == language && language != "" {
		list := e.teachers
		c.mu.Unlock()
		return list, nil
	}
	c.mu.Unlock()

	list, err := orchestrators.ExecuteListTeachers(ctx,
		orchestrators.ListTeachersInput{Session: c.sess, Language: language},
		orchestrators.ClassEditDeps{Platform: c.deps.Platform})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.classes[classID]; ok && cur == e && e.draft.Language == language {
		e.teachers = list
		e.teachersFor = language
	}
	return list, nil
}

// EditClass applies a patch to the draft. Either every field in the patch
// is applied or, on the first rejected field, none is.
func (c *Console) EditClass(classID string, p ClassPatch) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		next := *e.draft
		if p.Name != nil {
			if err := next.SetName(*p.Name); err != nil {
				return err
			}
		}
		if p.Price != nil {
			if err := next.SetPrice(*p.Price); err != nil {
				return err
			}
		}
		if p.ClassURL != nil {
			next.SetClassURL(*p.ClassURL)
		}
		if p.TeacherID != nil {
			if err := next.AssignTeacher(e.teachers, *p.TeacherID); err != nil {
				return err
			}
		}
		*e.draft = next
		return nil
	})
}

// AddSession appends a make-up session to the draft.
func (c *Console) AddSession(classID string) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		return e.draft.AddSession()
	})
}

// EditSession changes one field of one draft session.
func (c *Console) EditSession(classID string, index int, field, value string) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		return e.draft.EditSession(index, field, value, c.deps.Now())
	})
}

// RequestRemoval marks a draft session for removal pending confirmation.
func (c *Console) RequestRemoval(classID string, index int) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		return e.draft.RequestRemoval(index, c.deps.Now())
	})
}

// ConfirmRemoval removes the pending session from the draft.
func (c *Console) ConfirmRemoval(classID string) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		return e.draft.ConfirmRemoval(c.deps.Now())
	})
}

// CancelRemoval abandons the pending removal.
func (c *Console) CancelRemoval(classID string) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		e.draft.CancelRemoval()
		return nil
	})
}

// SetThumbnail stages a thumbnail to send with the next commit.
func (c *Console) SetThumbnail(classID string, u class.Upload) (ClassView, error) {
	return c.withDraft(classID, func(e *classEdit) error {
		e.draft.SetThumbnail(u)
		return nil
	})
}

// CommitClass sends the draft as a whole record. On success both the record
// and the draft become the platform's answer; on failure the draft is kept
// so the admin can retry. Either way a notice is raised.
// PRE: the class is open
// POST: Returns the view after the attempt
func (c *Console) CommitClass(ctx context.Context, classID string) (ClassView, error) {
	c.mu.Lock()
	e, ok := c.classes[classID]
	if !ok {
		c.mu.Unlock()
		return ClassView{}, ErrClassNotOpen
	}
	snapshot := *e.draft
	snapshot.Schedule = e.draft.Schedule.Clone()
	c.mu.Unlock()

	saved, err := orchestrators.ExecuteCommitClass(ctx,
		orchestrators.CommitClassInput{Session: c.sess, Draft: snapshot},
		orchestrators.ClassEditDeps{Platform: c.deps.Platform})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(MsgClassSaveFailed)
		return c.viewClass(e), err
	}
	e.record = saved
	e.draft.Replace(saved)
	c.succeed(MsgClassSaved)
	return c.viewClass(e), nil
}

// CreateClass creates a class and raises a notice either way.
func (c *Console) CreateClass(ctx context.Context, input orchestrators.CreateClassInput) (class.Class, error) {
	input.Session = c.sess
	created, err := orchestrators.ExecuteCreateClass(ctx, input, orchestrators.CreateClassDeps{
		Platform: c.deps.Platform,
		Now:      c.deps.Now,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(MsgClassNotCreated)
		return class.Class{}, err
	}
	c.succeed(MsgClassCreated)
	return created, nil
}

func (c *Console) withDraft(classID string, fn func(*classEdit) error) (ClassView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.classes[classID]
	if !ok {
		return ClassView{}, ErrClassNotOpen
	}
	err := fn(e)
	return c.viewClass(e), err
}

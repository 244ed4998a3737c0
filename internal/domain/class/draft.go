package class

import (
	"errors"
	"time"

	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

var (
	ErrNameLocked     = errors.New("class name cannot change once students have enrolled")
	ErrUnknownTeacher = errors.New("teacher is not a candidate for this class language")
)

// Draft is the editable copy of a Class held while an admin edits it.
// Nothing in a Draft is durable until the whole record is committed.
type Draft struct {
	Class
	removal schedule.Removal
	// Thumbnail is a replacement picked locally, sent with the next commit.
	Thumbnail *Upload `json:"-"`
}

// Upload is a file chosen on the console but not yet sent to the platform.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BeginEdit copies record into a fresh draft.
// POST: the draft shares no session slice with record
func BeginEdit(record Class) *Draft {
	d := &Draft{Class: record}
	d.Schedule = record.Schedule.Clone()
	return d
}

// SetName renames the class unless the name is locked.
func (d *Draft) SetName(name string) error {
	if d.NameLocked() {
		return ErrNameLocked
	}
	d.Name = name
	return nil
}

// SetPrice sets the price. Always editable.
func (d *Draft) SetPrice(price float64) error {
	if price < 0 {
		return ErrNegativePrice
	}
	d.Price = price
	return nil
}

// SetClassURL sets the meeting link. Always editable.
func (d *Draft) SetClassURL(url string) {
	d.ClassURL = url
}

// SetThumbnail stages a replacement thumbnail for the next commit.
func (d *Draft) SetThumbnail(u Upload) {
	d.Thumbnail = &u
}

// AssignTeacher sets TeacherID and TeacherName together from the candidate
// with the given id. The pair is never updated independently.
// PRE: candidates were fetched for d.Language
// POST: Returns ErrUnknownTeacher and leaves d unchanged if id is not listed
func (d *Draft) AssignTeacher(candidates []teacher.Candidate, id string) error {
	c, ok := teacher.Find(candidates, id)
	if !ok {
		return ErrUnknownTeacher
	}
	d.TeacherID = c.ID
	d.TeacherName = c.FullName
	return nil
}

// AddSession appends an empty make-up session (weekly classes only).
func (d *Draft) AddSession() error {
	m, err := schedule.AddSession(d.Schedule)
	if err != nil {
		return err
	}
	d.Schedule = m
	return nil
}

// EditSession sets one field of session i.
func (d *Draft) EditSession(i int, field, value string, today time.Time) error {
	m, err := schedule.EditField(d.Schedule, i, field, value, today)
	if err != nil {
		return err
	}
	d.Schedule = m
	return nil
}

// RequestRemoval asks to postpone session i; it waits for ConfirmRemoval.
func (d *Draft) RequestRemoval(i int, today time.Time) error {
	r, err := d.removal.Request(d.Schedule, i, today)
	if err != nil {
		return err
	}
	d.removal = r
	return nil
}

// ConfirmRemoval drops the pending session from the draft schedule unless it
// is past by today.
func (d *Draft) ConfirmRemoval(today time.Time) error {
	m, r, err := d.removal.Confirm(d.Schedule, today)
	d.removal = r
	if err != nil {
		return err
	}
	d.Schedule = m
	return nil
}

// CancelRemoval abandons the pending removal.
func (d *Draft) CancelRemoval() {
	d.removal = d.removal.Cancel()
}

// PendingRemoval returns the session index awaiting confirmation, if any.
func (d *Draft) PendingRemoval() (int, bool) {
	return d.removal.Pending()
}

// Replace swaps the draft content for the record the platform returned
// after a successful commit.
func (d *Draft) Replace(record Class) {
	*d = *BeginEdit(record)
}

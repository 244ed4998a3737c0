// Package local serves the platform boundary from a sqlite database and an
// on-disk media store, for development and single-site deployments.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ezlearn/internal/adapters/platform"
	classStore "ezlearn/internal/adapters/storage/class"
	courseStore "ezlearn/internal/adapters/storage/course"
	enrollmentStore "ezlearn/internal/adapters/storage/enrollment"
	teacherStore "ezlearn/internal/adapters/storage/teacher"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/teacher"
)

var (
	ErrClassTypeChanged = errors.New("class type cannot change after creation")
	ErrTeacherLanguage  = errors.New("teacher does not teach the class language")
	ErrWrongViewer      = errors.New("unit requested for a different viewer")
)

// MediaStore keeps uploaded files and returns their references.
type MediaStore interface {
	SaveThumbnail(filename string, data []byte) (string, error)
	SaveLecture(filename string, data []byte) (string, error)
}

// Stores holds the sqlite stores backing the platform.
type Stores struct {
	Classes    classStore.Store
	Enrolments enrollmentStore.Store
	Teachers   teacherStore.Store
	Courses    courseStore.Store
}

// Platform implements platform.Platform locally.
type Platform struct {
	stores   Stores
	media    MediaStore
	verifier *Verifier
	newID    func() string
}

var _ platform.Platform = (*Platform)(nil)

// New returns a local platform.
func New(stores Stores, media MediaStore, verifier *Verifier) *Platform {
	return &Platform{
		stores:   stores,
		media:    media,
		verifier: verifier,
		newID:    func() string { return uuid.New().String() },
	}
}

// FetchClass returns a class and its students.
func (p *Platform) FetchClass(ctx context.Context, sess platform.Session, classID string) (platform.ClassDetail, error) {
	if err := p.verifier.Verify(sess); err != nil {
		return platform.ClassDetail{}, platform.Failed("FetchClass", err)
	}
	c, err := p.stores.Classes.GetByID(ctx, classID)
	if err != nil {
		return platform.ClassDetail{}, platform.Failed("FetchClass", fmt.Errorf("class %s: %w", classID, err))
	}
	students, err := p.stores.Enrolments.ListByClassID(ctx, classID)
	if err != nil {
		return platform.ClassDetail{}, platform.Failed("FetchClass", err)
	}
	return platform.ClassDetail{Class: c, Students: students}, nil
}

// CommitClass applies a whole-record update and returns the stored class.
// PRE: the class exists
// POST: On error nothing is written
func (p *Platform) CommitClass(ctx context.Context, sess platform.Session, in platform.ClassCommit) (class.Class, error) {
	if err := p.verifier.Verify(sess); err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	c, err := p.stores.Classes.GetByID(ctx, in.ClassID)
	if err != nil {
		return class.Class{}, platform.Failed("CommitClass", fmt.Errorf("class %s: %w", in.ClassID, err))
	}

	if in.Name != c.Name && c.NameLocked() {
		return class.Class{}, platform.Failed("CommitClass", class.ErrNameLocked)
	}
	c.Name = in.Name

	if in.TeacherID != "" && in.TeacherID != c.TeacherID {
		t, err := p.teacherFor(ctx, in.TeacherID, c.Language)
		if err != nil {
			return class.Class{}, platform.Failed("CommitClass", err)
		}
		c.TeacherID, c.TeacherName = t.ID, t.FullName
	}

	if in.Schedule.Type != "" && in.Schedule.Type != c.Schedule.Type {
		return class.Class{}, platform.Failed("CommitClass", ErrClassTypeChanged)
	}
	c.Schedule.Sessions = in.Schedule.Clone().Sessions
	c.Price = in.Price
	c.ClassURL = in.ClassURL
	if err := c.Validate(); err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}

	if in.Thumbnail != nil && len(in.Thumbnail.Data) > 0 {
		ref, err := p.media.SaveThumbnail(in.Thumbnail.Filename, in.Thumbnail.Data)
		if err != nil {
			return class.Class{}, platform.Failed("CommitClass", err)
		}
		c.ThumbnailRef = ref
	}

	if err := p.stores.Classes.Save(ctx, c); err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	slog.Info("platform_event", "event", "class_committed", "class_id", c.ID, "viewer_id", sess.ViewerID, "sessions", len(c.Schedule.Sessions))
	saved, err := p.stores.Classes.GetByID(ctx, c.ID)
	if err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	return saved, nil
}

// CreateClass stores a new open class with no students.
func (p *Platform) CreateClass(ctx context.Context, sess platform.Session, in platform.NewClass) (class.Class, error) {
	if err := p.verifier.Verify(sess); err != nil {
		return class.Class{}, platform.Failed("CreateClass", err)
	}
	c := class.Class{
		ID:          p.newID(),
		Name:        in.Name,
		TeacherID:   in.TeacherID,
		TeacherName: in.TeacherName,
		Language:    in.Language,
		MaxStudents: in.MaxStudents,
		Price:       in.Price,
		PriceType:   in.PriceType,
		Status:      class.StatusOpen,
		Schedule:    in.Schedule.Clone(),
		ClassURL:    in.ClassURL,
	}
	if in.TeacherID != "" {
		t, err := p.teacherFor(ctx, in.TeacherID, in.Language)
		if err != nil {
			return class.Class{}, platform.Failed("CreateClass", err)
		}
		c.TeacherName = t.FullName
	}
	if err := c.Validate(); err != nil {
		return class.Class{}, platform.Failed("CreateClass", err)
	}
	if err := p.stores.Classes.Save(ctx, c); err != nil {
		return class.Class{}, platform.Failed("CreateClass", err)
	}
	slog.Info("platform_event", "event", "class_created", "class_id", c.ID, "class_type", c.Schedule.Type, "sessions", len(c.Schedule.Sessions))
	return c, nil
}

// ListTeachers returns the teachers of language.
func (p *Platform) ListTeachers(ctx context.Context, sess platform.Session, language string) ([]teacher.Candidate, error) {
	if err := p.verifier.Verify(sess); err != nil {
		return nil, platform.Failed("ListTeachers", err)
	}
	list, err := p.stores.Teachers.ListByLanguage(ctx, language)
	if err != nil {
		return nil, platform.Failed("ListTeachers", err)
	}
	return list, nil
}

// ResolveUnit looks a unit up in its course chain.
func (p *Platform) ResolveUnit(ctx context.Context, sess platform.Session, ref platform.UnitRef) (course.Resolution, error) {
	if err := p.verifier.Verify(sess); err != nil {
		return course.Resolution{}, platform.Failed("ResolveUnit", err)
	}
	if ref.ViewerID != sess.ViewerID {
		return course.Resolution{}, platform.Failed("ResolveUnit", ErrWrongViewer)
	}
	c, err := p.stores.Courses.GetByID(ctx, ref.CourseID)
	if err != nil {
		return course.Resolution{}, platform.Failed("ResolveUnit", fmt.Errorf("course %s: %w", ref.CourseID, err))
	}
	res, err := c.Resolve(ref.UnitID)
	if err != nil {
		return course.Resolution{}, platform.Failed("ResolveUnit", err)
	}
	return res, nil
}

// CommitUnit replaces a unit's overview and, when a file is attached, its
// media. The media kind follows the file's content type.
func (p *Platform) CommitUnit(ctx context.Context, sess platform.Session, in platform.UnitCommit) error {
	if err := p.verifier.Verify(sess); err != nil {
		return platform.Failed("CommitUnit", err)
	}
	u, err := p.stores.Courses.GetUnit(ctx, in.CourseID, in.UnitID)
	if err != nil {
		return platform.Failed("CommitUnit", fmt.Errorf("unit %s: %w", in.UnitID, err))
	}
	if in.Overview != "" {
		u.Overview = in.Overview
	}
	if in.File != nil && len(in.File.Data) > 0 {
		ref, err := p.media.SaveLecture(in.File.Filename, in.File.Data)
		if err != nil {
			return platform.Failed("CommitUnit", err)
		}
		u.MediaRef = ref
		u.MediaKind = course.MediaKindFromContentType(in.File.ContentType)
	}
	if err := p.stores.Courses.SaveUnit(ctx, u); err != nil {
		return platform.Failed("CommitUnit", err)
	}
	slog.Info("platform_event", "event", "unit_committed", "course_id", in.CourseID, "unit_id", u.ID, "media_replaced", in.File != nil)
	return nil
}

func (p *Platform) teacherFor(ctx context.Context, id, language string) (teacher.Candidate, error) {
	t, err := p.stores.Teachers.GetByID(ctx, id)
	if err != nil {
		return teacher.Candidate{}, fmt.Errorf("teacher %s: %w", id, err)
	}
	if !strings.EqualFold(t.Language, language) {
		return teacher.Candidate{}, ErrTeacherLanguage
	}
	return t, nil
}


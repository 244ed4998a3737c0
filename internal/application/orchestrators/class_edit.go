package orchestrators

import (
	"context"
	"log/slog"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/teacher"
)

// ClassPlatform is the part of the platform the class editor needs.
type ClassPlatform interface {
	FetchClass(ctx context.Context, sess platform.Session, classID string) (platform.ClassDetail, error)
	CommitClass(ctx context.Context, sess platform.Session, c platform.ClassCommit) (class.Class, error)
	ListTeachers(ctx context.Context, sess platform.Session, language string) ([]teacher.Candidate, error)
}

// ClassEditDeps holds dependencies for the class edit orchestrators.
type ClassEditDeps struct {
	Platform ClassPlatform
}

// --- Load Class ---

// LoadClassInput carries input for ExecuteLoadClass.
type LoadClassInput struct {
	Session platform.Session
	ClassID string
}

// ExecuteLoadClass fetches a class record and its students.
// PRE: ClassID is non-empty
// POST: Returns the record exactly as the platform holds it
func ExecuteLoadClass(ctx context.Context, input LoadClassInput, deps ClassEditDeps) (platform.ClassDetail, error) {
	detail, err := deps.Platform.FetchClass(ctx, input.Session, input.ClassID)
	if err != nil {
		slog.Warn("class_event", "event", "class_load_failed", "class_id", input.ClassID, "error", err)
		return platform.ClassDetail{}, err
	}
	slog.Info("class_event", "event", "class_loaded", "class_id", input.ClassID,
		"sessions", len(detail.Class.Schedule.Sessions), "students", len(detail.Students))
	return detail, nil
}

// --- List Teachers ---

// ListTeachersInput carries input for ExecuteListTeachers.
type ListTeachersInput struct {
	Session  platform.Session
	Language string
}

// ExecuteListTeachers returns the candidates who teach Language.
// PRE: none
// POST: Returns a non-nil slice on success
func ExecuteListTeachers(ctx context.Context, input ListTeachersInput, deps ClassEditDeps) ([]teacher.Candidate, error) {
	list, err := deps.Platform.ListTeachers(ctx, input.Session, input.Language)
	if err != nil {
		slog.Warn("class_event", "event", "teacher_list_failed", "language", input.Language, "error", err)
		return nil, err
	}
	if list == nil {
		list = []teacher.Candidate{}
	}
	return list, nil
}

// --- Commit Class ---

// CommitClassInput carries a snapshot of the draft being saved.
type CommitClassInput struct {
	Session platform.Session
	Draft   class.Draft
}

// ExecuteCommitClass sends the whole draft record to the platform.
// PRE: Draft was begun from a loaded record
// POST: On success returns the platform's representation of the saved class;
// on failure the caller's draft is untouched
func ExecuteCommitClass(ctx context.Context, input CommitClassInput, deps ClassEditDeps) (class.Class, error) {
	d := input.Draft
	commit := platform.ClassCommit{
		ClassID:   d.ID,
		Name:      d.Name,
		TeacherID: d.TeacherID,
		Price:     d.Price,
		Schedule:  d.Schedule.Clone(),
		ClassURL:  d.ClassURL,
	}
	if d.Thumbnail != nil {
		commit.Thumbnail = &platform.File{
			Filename:    d.Thumbnail.Filename,
			ContentType: d.Thumbnail.ContentType,
			Data:        d.Thumbnail.Data,
		}
	}

	saved, err := deps.Platform.CommitClass(ctx, input.Session, commit)
	if err != nil {
		slog.Warn("class_event", "event", "class_commit_failed", "class_id", d.ID, "error", err)
		return class.Class{}, err
	}
	slog.Info("class_event", "event", "class_committed", "class_id", saved.ID,
		"sessions", len(saved.Schedule.Sessions), "thumbnail_replaced", commit.Thumbnail != nil)
	return saved, nil
}

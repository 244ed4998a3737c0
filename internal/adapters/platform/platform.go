// Package platform is the boundary between the console and the education
// platform that owns classes, teachers and course content.
package platform

import (
	"context"
	"errors"

	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// ErrRequestFailed wraps every platform failure. Unknown ids, expired
// credentials and transport errors are deliberately not told apart.
var ErrRequestFailed = errors.New("platform request failed")

// Session is the identity every platform call carries.
type Session struct {
	ViewerID   string
	Credential string
}

// File is an upload travelling with a commit.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ClassDetail is a class record with its enrolled students.
type ClassDetail struct {
	Class    class.Class
	Students []class.Student
}

// ClassCommit is the whole-record update sent when an admin saves a class.
type ClassCommit struct {
	ClassID   string
	Name      string
	TeacherID string
	Price     float64
	Schedule  schedule.Model
	ClassURL  string
	Thumbnail *File
}

// NewClass is a class to be created.
type NewClass struct {
	Name        string
	Language    string
	TeacherID   string
	TeacherName string
	MaxStudents int
	ClassURL    string
	Price       float64
	PriceType   class.PriceType
	Schedule    schedule.Model
}

// UnitRef addresses one unit as seen by one viewer.
type UnitRef struct {
	CourseID string
	UnitID   string
	ViewerID string
}

// UnitCommit replaces a unit's overview and, optionally, its media.
// An empty Overview leaves the stored text alone.
type UnitCommit struct {
	UnitID   string
	CourseID string
	Overview string
	File     *File
}

// Platform is everything the console asks of the platform.
type Platform interface {
	FetchClass(ctx context.Context, sess Session, classID string) (ClassDetail, error)
	CommitClass(ctx context.Context, sess Session, c ClassCommit) (class.Class, error)
	CreateClass(ctx context.Context, sess Session, c NewClass) (class.Class, error)
	ListTeachers(ctx context.Context, sess Session, language string) ([]teacher.Candidate, error)
	ResolveUnit(ctx context.Context, sess Session, ref UnitRef) (course.Resolution, error)
	CommitUnit(ctx context.Context, sess Session, c UnitCommit) error
}

// Failed wraps err as a platform failure.
func Failed(op string, err error) error {
	return &OpError{Op: op, Err: err}
}

// OpError records which platform operation failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return "platform " + e.Op + ": " + e.Err.Error() }

// Is makes every OpError match ErrRequestFailed.
func (e *OpError) Is(target error) bool { return target == ErrRequestFailed }

func (e *OpError) Unwrap() error { return e.Err }

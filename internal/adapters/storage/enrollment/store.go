package enrollment

import (
	"context"
	"time"

	"ezlearn/internal/domain/class"
)

// Record is one student's place in one class.
type Record struct {
	ID         string
	ClassID    string
	Student    class.Student
	EnrolledAt time.Time
}

// Store persists enrollments.
type Store interface {
	Save(ctx context.Context, value Record) error
	ListByClassID(ctx context.Context, classID string) ([]class.Student, error)
}

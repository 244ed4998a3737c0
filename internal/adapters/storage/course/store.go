package course

import (
	"context"

	domain "ezlearn/internal/domain/course"
)

// Store persists courses as ordered groups of ordered units.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Course, error)
	Save(ctx context.Context, value domain.Course) error
	GetUnit(ctx context.Context, courseID, unitID string) (domain.Unit, error)
	SaveUnit(ctx context.Context, unit domain.Unit) error
}

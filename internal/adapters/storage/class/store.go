package class

import (
	"context"

	domain "ezlearn/internal/domain/class"
)

// Store persists class records with their session lists.
// CurrentStudentCount is always derived from enrollment rows on read and
// ignored on write.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
	List(ctx context.Context) ([]domain.Class, error)
}

package teacher

import (
	"context"

	domain "ezlearn/internal/domain/teacher"
)

// Store persists teacher candidates.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Candidate, error)
	Save(ctx context.Context, value domain.Candidate) error
	ListByLanguage(ctx context.Context, language string) ([]domain.Candidate, error)
}

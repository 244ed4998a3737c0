package teacher

import (
	"context"

	"ezlearn/internal/adapters/storage"
	domain "ezlearn/internal/domain/teacher"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a teacher by ID.
// PRE: id is non-empty
// POST: Returns the candidate or sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Candidate, error) {
	var c domain.Candidate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, language FROM teacher WHERE id = ?`, id).
		Scan(&c.ID, &c.FullName, &c.Language)
	return c, err
}

// Save inserts or updates a teacher.
// PRE: value has been validated
// POST: Candidate is persisted
func (s *SQLiteStore) Save(ctx context.Context, c domain.Candidate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teacher (id, full_name, language) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET full_name=excluded.full_name, language=excluded.language`,
		c.ID, c.FullName, c.Language)
	return err
}

// ListByLanguage returns teachers of language, matched case-insensitively,
// ordered by name.
// PRE: none
// POST: Returns an empty slice when nobody teaches language
func (s *SQLiteStore) ListByLanguage(ctx context.Context, language string) ([]domain.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, language FROM teacher
		 WHERE language = ? COLLATE NOCASE ORDER BY full_name, id`, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Candidate{}
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.FullName, &c.Language); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)

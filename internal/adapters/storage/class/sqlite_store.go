package class

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ezlearn/internal/adapters/storage"
	domain "ezlearn/internal/domain/class"
	"ezlearn/internal/domain/schedule"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const classColumns = `id, name, teacher_id, teacher_name, language, max_students, price,
		price_type, status, class_type, class_url, thumbnail,
		(SELECT COUNT(*) FROM enrollment e WHERE e.class_id = class.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanClass(row scanner) (domain.Class, error) {
	var c domain.Class
	err := row.Scan(&c.ID, &c.Name, &c.TeacherID, &c.TeacherName, &c.Language,
		&c.MaxStudents, &c.Price, &c.PriceType, &c.Status, &c.Schedule.Type,
		&c.ClassURL, &c.ThumbnailRef, &c.CurrentStudentCount)
	return c, err
}

// GetByID retrieves a class and its sessions in display order.
// PRE: id is non-empty
// POST: Returns the class or sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	c, err := scanClass(s.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM class WHERE id = ?`, id))
	if err != nil {
		return domain.Class{}, err
	}
	sessions, err := s.sessions(ctx, `WHERE class_id = ?`, id)
	if err != nil {
		return domain.Class{}, err
	}
	c.Schedule.Sessions = sessions[id]
	return c, nil
}

// Save writes the class row and replaces its whole session list in one
// transaction.
// PRE: value has been validated
// POST: Class and sessions persisted; earlier sessions no longer exist
func (s *SQLiteStore) Save(ctx context.Context, c domain.Class) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO class (id, name, teacher_id, teacher_name, language, max_students, price,
		   price_type, status, class_type, class_url, thumbnail, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, teacher_id=excluded.teacher_id, teacher_name=excluded.teacher_name,
		   language=excluded.language, max_students=excluded.max_students, price=excluded.price,
		   price_type=excluded.price_type, status=excluded.status, class_type=excluded.class_type,
		   class_url=excluded.class_url, thumbnail=excluded.thumbnail, updated_at=excluded.updated_at`,
		c.ID, c.Name, c.TeacherID, c.TeacherName, c.Language, c.MaxStudents, c.Price,
		c.PriceType, c.Status, c.Schedule.Type, c.ClassURL, c.ThumbnailRef,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save class %s: %w", c.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_session WHERE class_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear sessions %s: %w", c.ID, err)
	}
	for i, sess := range c.Schedule.Sessions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO class_session (class_id, position, date, time_from, time_to) VALUES (?, ?, ?, ?, ?)`,
			c.ID, i, sess.Date, sess.TimeFrom, sess.TimeTo)
		if err != nil {
			return fmt.Errorf("save session %d of %s: %w", i, c.ID, err)
		}
	}
	return tx.Commit()
}

// List returns every class ordered by name.
// PRE: none
// POST: Each class carries its sessions in display order
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Class, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+classColumns+` FROM class ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	var classes []domain.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	sessions, err := s.sessions(ctx, ``)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].Schedule.Sessions = sessions[classes[i].ID]
	}
	return classes, nil
}

// sessions loads session rows grouped by class id.
func (s *SQLiteStore) sessions(ctx context.Context, where string, args ...any) (map[string][]schedule.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT class_id, date, time_from, time_to FROM class_session `+where+` ORDER BY class_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]schedule.Session)
	for rows.Next() {
		var id string
		var sess schedule.Session
		if err := rows.Scan(&id, &sess.Date, &sess.TimeFrom, &sess.TimeTo); err != nil {
			return nil, err
		}
		out[id] = append(out[id], sess)
	}
	return out, rows.Err()
}

var (
	_ Store   = (*SQLiteStore)(nil)
	_ scanner = (*sql.Row)(nil)
)

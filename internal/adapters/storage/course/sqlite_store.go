package course

import (
	"context"
	"database/sql"
	"fmt"

	"ezlearn/internal/adapters/storage"
	domain "ezlearn/internal/domain/course"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID assembles a course with its groups and units in teaching order.
// PRE: id is non-empty
// POST: Returns the course or sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Course, error) {
	var c domain.Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, language FROM course WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Language)
	if err != nil {
		return domain.Course{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, u.id, u.title, u.overview, u.media_ref, u.media_kind
		 FROM course_group g
		 LEFT JOIN course_unit u ON u.group_id = g.id
		 WHERE g.course_id = ?
		 ORDER BY g.position, u.position`, id)
	if err != nil {
		return domain.Course{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, groupName string
		var unitID, title, overview, ref, kind sql.NullString
		if err := rows.Scan(&groupID, &groupName, &unitID, &title, &overview, &ref, &kind); err != nil {
			return domain.Course{}, err
		}
		if n := len(c.Groups); n == 0 || c.Groups[n-1].ID != groupID {
			c.Groups = append(c.Groups, domain.Group{ID: groupID, Name: groupName})
		}
		if !unitID.Valid {
			continue
		}
		g := &c.Groups[len(c.Groups)-1]
		g.Units = append(g.Units, domain.Unit{
			ID:        unitID.String,
			Title:     title.String,
			Overview:  overview.String,
			MediaRef:  ref.String,
			MediaKind: domain.ParseMediaKind(kind.String),
		})
	}
	return c, rows.Err()
}

// Save replaces the course and its whole group/unit tree in one transaction.
// PRE: value has been validated
// POST: Stored order matches the slice order of Groups and Units
func (s *SQLiteStore) Save(ctx context.Context, c domain.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO course (id, name, language) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, language=excluded.language`,
		c.ID, c.Name, c.Language); err != nil {
		return fmt.Errorf("save course %s: %w", c.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM course_unit WHERE group_id IN (SELECT id FROM course_group WHERE course_id = ?)`, c.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_group WHERE course_id = ?`, c.ID); err != nil {
		return err
	}
	for gi, g := range c.Groups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_group (id, course_id, position, name) VALUES (?, ?, ?, ?)`,
			g.ID, c.ID, gi, g.Name); err != nil {
			return fmt.Errorf("save group %s: %w", g.ID, err)
		}
		for ui, u := range g.Units {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO course_unit (id, group_id, position, title, overview, media_ref, media_kind)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				u.ID, g.ID, ui, u.Title, u.Overview, u.MediaRef, u.MediaKind); err != nil {
				return fmt.Errorf("save unit %s: %w", u.ID, err)
			}
		}
	}
	return tx.Commit()
}

// GetUnit returns one unit, provided it belongs to courseID.
// PRE: courseID and unitID are non-empty
// POST: Returns sql.ErrNoRows if the unit is not part of the course
func (s *SQLiteStore) GetUnit(ctx context.Context, courseID, unitID string) (domain.Unit, error) {
	var u domain.Unit
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.title, u.overview, u.media_ref, u.media_kind
		 FROM course_unit u JOIN course_group g ON g.id = u.group_id
		 WHERE g.course_id = ? AND u.id = ?`, courseID, unitID).
		Scan(&u.ID, &u.Title, &u.Overview, &u.MediaRef, &kind)
	if err != nil {
		return domain.Unit{}, err
	}
	u.MediaKind = domain.ParseMediaKind(kind)
	return u, nil
}

// SaveUnit updates the content of an existing unit. Position and group are
// left alone.
// PRE: unit exists
// POST: Returns sql.ErrNoRows if no unit has that id
func (s *SQLiteStore) SaveUnit(ctx context.Context, u domain.Unit) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE course_unit SET title = ?, overview = ?, media_ref = ?, media_kind = ? WHERE id = ?`,
		u.Title, u.Overview, u.MediaRef, u.MediaKind, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)

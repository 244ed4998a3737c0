package enrollment

import (
	"context"
	"time"

	"ezlearn/internal/adapters/storage"
	"ezlearn/internal/domain/class"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates an enrollment.
// PRE: the class exists
// POST: Record persisted
func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollment (id, class_id, student_name, email, phone_number, payment_status, enrolled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   class_id=excluded.class_id, student_name=excluded.student_name, email=excluded.email,
		   phone_number=excluded.phone_number, payment_status=excluded.payment_status`,
		r.ID, r.ClassID, r.Student.Name, r.Student.Email, r.Student.PhoneNumber,
		r.Student.PaymentStatus, r.EnrolledAt.UTC().Format(time.RFC3339))
	return err
}

// ListByClassID returns the students of a class in enrolment order.
// PRE: none
// POST: Returns an empty slice for a class nobody has joined
func (s *SQLiteStore) ListByClassID(ctx context.Context, classID string) ([]class.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_name, email, phone_number, payment_status FROM enrollment
		 WHERE class_id = ? ORDER BY enrolled_at, id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []class.Student{}
	for rows.Next() {
		var st class.Student
		if err := rows.Scan(&st.Name, &st.Email, &st.PhoneNumber, &st.PaymentStatus); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)

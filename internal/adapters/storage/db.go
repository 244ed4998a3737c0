package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations are applied in order; a database records the highest version
// it has seen in schema_version and never replays earlier steps.
var migrations = []migration{
	{1, "teachers", `
	CREATE TABLE IF NOT EXISTS teacher (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		language TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_teacher_language ON teacher(language);`},

	{2, "classes", `
	CREATE TABLE IF NOT EXISTS class (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		teacher_id TEXT NOT NULL DEFAULT '',
		teacher_name TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL,
		max_students INTEGER NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		price_type TEXT NOT NULL,
		status TEXT NOT NULL,
		class_type TEXT NOT NULL,
		class_url TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS class_session (
		class_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		time_from TEXT NOT NULL DEFAULT '',
		time_to TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (class_id, position),
		FOREIGN KEY (class_id) REFERENCES class(id) ON DELETE CASCADE
	);`},

	{3, "enrollment", `
	CREATE TABLE IF NOT EXISTS enrollment (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL,
		enrolled_at TEXT NOT NULL,
		FOREIGN KEY (class_id) REFERENCES class(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_enrollment_class ON enrollment(class_id);`},

	{4, "courses", `
	CREATE TABLE IF NOT EXISTS course (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS course_group (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		FOREIGN KEY (course_id) REFERENCES course(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS course_unit (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		overview TEXT NOT NULL DEFAULT '',
		media_ref TEXT NOT NULL DEFAULT '',
		media_kind TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (group_id) REFERENCES course_group(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_course_group_course ON course_group(course_id, position);
	CREATE INDEX IF NOT EXISTS idx_course_unit_group ON course_unit(group_id, position);`},
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest migration applied to db, or 0 for a
// database that has never been migrated.
// PRE: db is a valid database connection
// POST: Returns the recorded version or an error
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB brings db up to LatestSchemaVersion. path is only used in log
// lines so operators can tell which file was touched.
// PRE: db is a valid database connection
// POST: All pending migrations applied, WAL mode and foreign keys enabled
func MigrateDB(db *sql.DB, path string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("storage_event", "event", "migration_applied", "db", path, "version", m.version, "name", m.name)
	}
	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ezlearn/internal/adapters/http/perf"
	"ezlearn/internal/adapters/media"
	"ezlearn/internal/adapters/platform/local"
	"ezlearn/internal/adapters/storage"
	classStore "ezlearn/internal/adapters/storage/class"
	courseStore "ezlearn/internal/adapters/storage/course"
	enrollmentStore "ezlearn/internal/adapters/storage/enrollment"
	teacherStore "ezlearn/internal/adapters/storage/teacher"
	"ezlearn/internal/application/orchestrators"
)

// devCredentialTTL is how long the credential logged in development lasts.
const devCredentialTTL = 12 * time.Hour

// openLocal opens the sqlite database, migrates it, loads fixtures and
// returns the local platform with a func that closes the database.
func openLocal(cfg config, mediaStore *media.Store, collector *perf.Collector) (*local.Platform, func(), error) {
	// WAL mode, foreign keys and busy timeout are set per connection.
	dsn := cfg.dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, cfg.dbPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	timedDB := storage.NewTimedDB(db, collector, cfg.slowQuery)
	stores := local.Stores{
		Classes:    classStore.NewSQLiteStore(timedDB),
		Enrolments: enrollmentStore.NewSQLiteStore(timedDB),
		Teachers:   teacherStore.NewSQLiteStore(timedDB),
		Courses:    courseStore.NewSQLiteStore(timedDB),
	}

	if cfg.seedPath != "" {
		if err := seedFixtures(cfg.seedPath, stores); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	verifier := local.NewVerifier(cfg.jwtSecret)
	if cfg.env != "production" {
		token, err := verifier.Issue("admin", time.Now(), devCredentialTTL)
		if err != nil {
			log.Printf("WARNING: could not mint development credential: %v", err)
		} else {
			slog.Info("platform_event", "event", "dev_credential", "viewer_id", "admin", "credential", token)
		}
	}

	return local.New(stores, mediaStore, verifier), func() { db.Close() }, nil
}

func seedFixtures(path string, stores local.Stores) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	fixtures, err := orchestrators.ParseFixtures(f)
	if err != nil {
		return fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	deps := orchestrators.SeedFixturesDeps{
		TeacherStore:    stores.Teachers,
		ClassStore:      stores.Classes,
		EnrollmentStore: stores.Enrolments,
		CourseStore:     stores.Courses,
		GenerateID:      func() string { return uuid.New().String() },
		Now:             time.Now,
	}
	if err := orchestrators.ExecuteSeedFixtures(context.Background(), fixtures, deps); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	return nil
}

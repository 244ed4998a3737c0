package course

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"ezlearn/internal/adapters/storage"
	domain "ezlearn/internal/domain/course"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleCourse() domain.Course {
	return domain.Course{
		ID: "k1", Name: "Korean for beginners", Language: "Korean",
		Groups: []domain.Group{
			{ID: "g1", Name: "Hangul", Units: []domain.Unit{
				{ID: "u1", Title: "Vowels", Overview: "Ten basic vowels", MediaRef: "/media/u1.pdf", MediaKind: domain.Document},
				{ID: "u2", Title: "Consonants", MediaRef: "/media/u2.mp4", MediaKind: domain.Video},
			}},
			{ID: "g2", Name: "Empty chapter"},
			{ID: "g3", Name: "Greetings", Units: []domain.Unit{
				{ID: "u3", Title: "Annyeong", MediaKind: domain.Document},
			}},
		},
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := NewSQLiteStore(setupDB(t))
	ctx := context.Background()
	if err := store.Save(ctx, sampleCourse()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "k1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(got.Groups))
	}
	if len(got.Groups[1].Units) != 0 {
		t.Errorf("empty chapter has %d units", len(got.Groups[1].Units))
	}
	if got.Groups[0].Units[1].MediaKind != domain.Video {
		t.Errorf("u2 kind = %q, want video", got.Groups[0].Units[1].MediaKind)
	}

	res, err := got.Resolve("u2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.PreviousUnitID != "u1" || res.NextUnitID != "u3" {
		t.Errorf("neighbours = %q/%q, want u1/u3", res.PreviousUnitID, res.NextUnitID)
	}
}

func TestSQLiteStore_SaveReplacesTree(t *testing.T) {
	store := NewSQLiteStore(setupDB(t))
	ctx := context.Background()
	c := sampleCourse()
	store.Save(ctx, c)

	c.Groups = c.Groups[2:]
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, _ := store.GetByID(ctx, "k1")
	if len(got.Groups) != 1 || got.Groups[0].ID != "g3" {
		t.Errorf("groups = %+v, want only g3", got.Groups)
	}
	if _, err := store.GetUnit(ctx, "k1", "u1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("u1 should be gone, err = %v", err)
	}
}

func TestSQLiteStore_UnitRoundTrip(t *testing.T) {
	store := NewSQLiteStore(setupDB(t))
	ctx := context.Background()
	store.Save(ctx, sampleCourse())

	u, err := store.GetUnit(ctx, "k1", "u1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	u.Overview = "Updated overview"
	u.MediaRef = "/media/new.mp4"
	u.MediaKind = domain.Video
	if err := store.SaveUnit(ctx, u); err != nil {
		t.Fatalf("SaveUnit: %v", err)
	}

	got, _ := store.GetUnit(ctx, "k1", "u1")
	if got.Overview != "Updated overview" || got.MediaKind != domain.Video {
		t.Errorf("unit = %+v", got)
	}
}

func TestSQLiteStore_GetUnit_WrongCourse(t *testing.T) {
	store := NewSQLiteStore(setupDB(t))
	ctx := context.Background()
	store.Save(ctx, sampleCourse())

	if _, err := store.GetUnit(ctx, "other", "u1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if err := store.SaveUnit(ctx, domain.Unit{ID: "ghost", Title: "x"}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SaveUnit ghost err = %v, want sql.ErrNoRows", err)
	}
}

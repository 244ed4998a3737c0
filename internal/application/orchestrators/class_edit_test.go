package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// mockPlatform implements every platform interface the orchestrators use.
type mockPlatform struct {
	detail     platform.ClassDetail
	teachers   map[string][]teacher.Candidate
	resolution map[string]course.Resolution
	err        error

	committed   []platform.ClassCommit
	created     []platform.NewClass
	unitCommits []platform.UnitCommit
}

func (m *mockPlatform) FetchClass(_ context.Context, _ platform.Session, id string) (platform.ClassDetail, error) {
	if m.err != nil {
		return platform.ClassDetail{}, m.err
	}
	if id != m.detail.Class.ID {
		return platform.ClassDetail{}, platform.Failed("FetchClass", errors.New("not found"))
	}
	return m.detail, nil
}

func (m *mockPlatform) CommitClass(_ context.Context, _ platform.Session, c platform.ClassCommit) (class.Class, error) {
	if m.err != nil {
		return class.Class{}, m.err
	}
	m.committed = append(m.committed, c)
	saved := m.detail.Class
	saved.Name = c.Name
	saved.Price = c.Price
	saved.Schedule = c.Schedule
	saved.ClassURL = c.ClassURL
	return saved, nil
}

func (m *mockPlatform) CreateClass(_ context.Context, _ platform.Session, c platform.NewClass) (class.Class, error) {
	if m.err != nil {
		return class.Class{}, m.err
	}
	m.created = append(m.created, c)
	return class.Class{ID: "created-1", Name: c.Name, Schedule: c.Schedule, Status: class.StatusOpen}, nil
}

func (m *mockPlatform) ListTeachers(_ context.Context, _ platform.Session, language string) ([]teacher.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.teachers[language], nil
}

func (m *mockPlatform) ResolveUnit(ctx context.Context, _ platform.Session, ref platform.UnitRef) (course.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return course.Resolution{}, platform.Failed("ResolveUnit", err)
	}
	if m.err != nil {
		return course.Resolution{}, m.err
	}
	res, ok := m.resolution[ref.UnitID]
	if !ok {
		return course.Resolution{}, platform.Failed("ResolveUnit", course.ErrUnitNotFound)
	}
	return res, nil
}

func (m *mockPlatform) CommitUnit(_ context.Context, _ platform.Session, c platform.UnitCommit) error {
	if m.err != nil {
		return m.err
	}
	m.unitCommits = append(m.unitCommits, c)
	return nil
}

var (
	testSession = platform.Session{ViewerID: "admin-1", Credential: "tok"}
	fixedTime   = time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

func sampleClass() class.Class {
	return class.Class{
		ID: "c1", Name: "Korean A1", TeacherID: "t1", TeacherName: "Kim Minji",
		Language: "Korean", Price: 100, PriceType: class.PerCourse, Status: class.StatusOpen,
		Schedule: schedule.NewWeekly(
			schedule.Session{Date: "02/06/2025", TimeFrom: "18:00", TimeTo: "19:30"},
			schedule.Session{Date: "20/06/2025", TimeFrom: "18:00", TimeTo: "19:30"},
		),
	}
}

func TestExecuteLoadClass(t *testing.T) {
	m := &mockPlatform{detail: platform.ClassDetail{Class: sampleClass(), Students: []class.Student{{Name: "An"}}}}

	detail, err := ExecuteLoadClass(context.Background(), LoadClassInput{Session: testSession, ClassID: "c1"}, ClassEditDeps{Platform: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Class.Name != "Korean A1" || len(detail.Students) != 1 {
		t.Errorf("detail = %+v", detail)
	}

	_, err = ExecuteLoadClass(context.Background(), LoadClassInput{Session: testSession, ClassID: "nope"}, ClassEditDeps{Platform: m})
	if !errors.Is(err, platform.ErrRequestFailed) {
		t.Errorf("err = %v, want ErrRequestFailed", err)
	}
}

func TestExecuteListTeachers_NeverNil(t *testing.T) {
	m := &mockPlatform{teachers: map[string][]teacher.Candidate{}}
	list, err := ExecuteListTeachers(context.Background(), ListTeachersInput{Session: testSession, Language: "Thai"}, ClassEditDeps{Platform: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil {
		t.Error("list should be empty, not nil")
	}
}

func TestExecuteCommitClass_SendsWholeDraft(t *testing.T) {
	m := &mockPlatform{detail: platform.ClassDetail{Class: sampleClass()}}
	d := class.BeginEdit(sampleClass())
	if err := d.SetPrice(150); err != nil {
		t.Fatal(err)
	}
	if err := d.AddSession(); err != nil {
		t.Fatal(err)
	}
	d.SetThumbnail(class.Upload{Filename: "cover.png", ContentType: "image/png", Data: []byte{1}})

	saved, err := ExecuteCommitClass(context.Background(), CommitClassInput{Session: testSession, Draft: *d}, ClassEditDeps{Platform: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.committed) != 1 {
		t.Fatalf("commits = %d, want 1", len(m.committed))
	}
	sent := m.committed[0]
	if sent.Price != 150 || len(sent.Schedule.Sessions) != 3 || sent.TeacherID != "t1" {
		t.Errorf("sent = %+v", sent)
	}
	if sent.Thumbnail == nil || sent.Thumbnail.Filename != "cover.png" {
		t.Errorf("thumbnail = %+v", sent.Thumbnail)
	}
	if saved.Price != 150 {
		t.Errorf("saved price = %v", saved.Price)
	}
}

func TestExecuteCommitClass_FailureReturnsError(t *testing.T) {
	cause := platform.Failed("CommitClass", errors.New("502"))
	m := &mockPlatform{detail: platform.ClassDetail{Class: sampleClass()}, err: cause}
	d := class.BeginEdit(sampleClass())
	d.SetPrice(999)

	_, err := ExecuteCommitClass(context.Background(), CommitClassInput{Session: testSession, Draft: *d}, ClassEditDeps{Platform: m})
	if !errors.Is(err, platform.ErrRequestFailed) {
		t.Errorf("err = %v, want ErrRequestFailed", err)
	}
	if d.Price != 999 {
		t.Errorf("draft price = %v, want 999 kept", d.Price)
	}
}

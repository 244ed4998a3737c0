package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/application/orchestrators"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/navigator"
	"ezlearn/internal/domain/notice"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// fakePlatform serves one class and a few units. The first ResolveUnit call
// for hold waits for release and ignores cancellation, so a test can make an
// old lookup answer after a newer one.
type fakePlatform struct {
	mu         sync.Mutex
	detail     platform.ClassDetail
	teachers   map[string][]teacher.Candidate
	units      map[string]course.Resolution
	err        error
	teacherErr error

	hold     string
	entered  chan struct{}
	release  chan struct{}
	held     bool
	heldErr  error
	commits  []platform.ClassCommit
	unitSent []platform.UnitCommit
}

func (f *fakePlatform) FetchClass(_ context.Context, _ platform.Session, id string) (platform.ClassDetail, error) {
	if f.err != nil {
		return platform.ClassDetail{}, f.err
	}
	if id != f.detail.Class.ID {
		return platform.ClassDetail{}, platform.Failed("FetchClass", errors.New("not found"))
	}
	return f.detail, nil
}

func (f *fakePlatform) CommitClass(_ context.Context, _ platform.Session, c platform.ClassCommit) (class.Class, error) {
	if f.err != nil {
		return class.Class{}, f.err
	}
	f.mu.Lock()
	f.commits = append(f.commits, c)
	f.mu.Unlock()
	saved := f.detail.Class
	saved.Name = c.Name
	saved.Price = c.Price
	saved.Schedule = c.Schedule
	saved.ClassURL = c.ClassURL
	saved.TeacherID = c.TeacherID
	if c.Thumbnail != nil {
		saved.ThumbnailRef = "/media/thumbnails/" + c.Thumbnail.Filename
	}
	return saved, nil
}

func (f *fakePlatform) CreateClass(_ context.Context, _ platform.Session, c platform.NewClass) (class.Class, error) {
	if f.err != nil {
		return class.Class{}, f.err
	}
	return class.Class{ID: "new-1", Name: c.Name, Schedule: c.Schedule, Status: class.StatusOpen}, nil
}

func (f *fakePlatform) ListTeachers(_ context.Context, _ platform.Session, language string) ([]teacher.Candidate, error) {
	if f.teacherErr != nil {
		return nil, f.teacherErr
	}
	return f.teachers[language], nil
}

func (f *fakePlatform) ResolveUnit(ctx context.Context, _ platform.Session, ref platform.UnitRef) (course.Resolution, error) {
	f.mu.Lock()
	wait := ref.UnitID == f.hold && !f.held
	if wait {
		f.held = true
	}
	f.mu.Unlock()
	if wait {
		close(f.entered)
		<-f.release
		f.mu.Lock()
		f.heldErr = ctx.Err()
		f.mu.Unlock()
		res := f.units[ref.UnitID]
		res.Content.Overview = "stale"
		return res, nil
	}
	if f.err != nil {
		return course.Resolution{}, f.err
	}
	res, ok := f.units[ref.UnitID]
	if !ok {
		return course.Resolution{}, platform.Failed("ResolveUnit", course.ErrUnitNotFound)
	}
	return res, nil
}

func (f *fakePlatform) CommitUnit(_ context.Context, _ platform.Session, c platform.UnitCommit) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.unitSent = append(f.unitSent, c)
	f.mu.Unlock()
	return nil
}

type fakePreviews struct{ saved []string }

func (p *fakePreviews) SavePreview(filename string, _ []byte) (string, error) {
	p.saved = append(p.saved, filename)
	return "/media/previews/" + filename, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

var testSession = platform.Session{ViewerID: "admin-1", Credential: "tok"}

func sampleClass() class.Class {
	return class.Class{
		ID: "c1", Name: "Korean A1", TeacherID: "t1", TeacherName: "Kim Minji",
		Language: "Korean", Price: 100, PriceType: class.PerCourse, Status: class.StatusOpen,
		CurrentStudentCount: 1,
		Schedule: schedule.NewWeekly(
			schedule.Session{Date: "02/06/2025", TimeFrom: "18:00", TimeTo: "19:30"},
			schedule.Session{Date: "20/06/2025", TimeFrom: "18:00", TimeTo: "19:30"},
		),
	}
}

func sampleUnits() map[string]course.Resolution {
	return map[string]course.Resolution{
		"u-1": {Content: course.Unit{ID: "u-1", Title: "Vowels", Overview: "One", MediaKind: course.Video}, NextUnitID: "u-2"},
		"u-2": {Content: course.Unit{ID: "u-2", Title: "Consonants", Overview: "Two", MediaKind: course.Document}, PreviousUnitID: "u-1"},
	}
}

func newTestConsole(t *testing.T) (*Console, *fakePlatform, *clock) {
	t.Helper()
	fp := &fakePlatform{
		detail: platform.ClassDetail{Class: sampleClass(), Students: []class.Student{{Name: "An", PaymentStatus: class.PaymentSuccess}}},
		teachers: map[string][]teacher.Candidate{
			"Korean": {{ID: "t1", FullName: "Kim Minji"}, {ID: "t2", FullName: "Park Jisoo"}},
		},
		units: sampleUnits(),
	}
	clk := &clock{now: time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)}
	ws := NewWorkspace(Deps{Platform: fp, Previews: &fakePreviews{}, Now: clk.Now})
	return ws.Open("token-1", testSession), fp, clk
}

func TestOpenClass_StartsDraft(t *testing.T) {
	c, _, _ := newTestConsole(t)

	v, err := c.OpenClass(context.Background(), "c1")
	if err != nil {
		t.Fatalf("OpenClass: %v", err)
	}
	if v.Draft.Name != "Korean A1" || len(v.Students) != 1 || len(v.Teachers) != 2 {
		t.Errorf("view = %+v", v)
	}
	if !v.NameLocked {
		t.Error("name should be locked with one student enrolled")
	}
	if v.PaidStudents != 1 {
		t.Errorf("PaidStudents = %d, want 1", v.PaidStudents)
	}
	if len(v.LockedSessions) != 1 || v.LockedSessions[0] != 0 {
		t.Errorf("LockedSessions = %v, want [0]", v.LockedSessions)
	}
	if v.Span != "02/06/2025 - 20/06/2025" {
		t.Errorf("Span = %q", v.Span)
	}

	if _, err := c.Class("other"); !errors.Is(err, ErrClassNotOpen) {
		t.Errorf("expected ErrClassNotOpen, got %v", err)
	}
}

func TestOpenClass_TeacherListFailureLeavesEmptyList(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	fp.teacherErr = platform.Failed("ListTeachers", errors.New("timeout"))

	v, err := c.OpenClass(context.Background(), "c1")
	if err != nil {
		t.Fatalf("OpenClass: %v", err)
	}
	if v.Teachers == nil || len(v.Teachers) != 0 {
		t.Errorf("Teachers = %v, want empty", v.Teachers)
	}
}

func TestEditClass_PatchIsAtomic(t *testing.T) {
	c, _, _ := newTestConsole(t)
	if _, err := c.OpenClass(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	name := "Korean A2"
	price := 200.0
	v, err := c.EditClass("c1", ClassPatch{Price: &price, Name: &name})
	if !errors.Is(err, class.ErrNameLocked) || !IsRejected(err) {
		t.Fatalf("err = %v, want rejected ErrNameLocked", err)
	}
	if v.Draft.Price != 100 || v.Draft.Name != "Korean A1" {
		t.Errorf("partial patch applied: %+v", v.Draft)
	}

	teacherID := "t2"
	v, err = c.EditClass("c1", ClassPatch{Price: &price, TeacherID: &teacherID})
	if err != nil {
		t.Fatalf("EditClass: %v", err)
	}
	if v.Draft.Price != 200 || v.Draft.TeacherID != "t2" || v.Draft.TeacherName != "Park Jisoo" {
		t.Errorf("draft = %+v", v.Draft)
	}
	if v.Record.Price != 100 {
		t.Error("editing the draft changed the record")
	}
}

func TestSessionEdits(t *testing.T) {
	c, _, _ := newTestConsole(t)
	if _, err := c.OpenClass(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.EditSession("c1", 0, schedule.FieldTimeFrom, "17:00"); !errors.Is(err, schedule.ErrPastSession) || !IsRejected(err) {
		t.Errorf("editing past session: err = %v", err)
	}
	v, err := c.EditSession("c1", 1, schedule.FieldTimeFrom, "17:00")
	if err != nil || v.Draft.Schedule.Sessions[1].TimeFrom != "17:00" {
		t.Fatalf("EditSession = %v, %+v", err, v.Draft.Schedule)
	}

	v, err = c.AddSession("c1")
	if err != nil || len(v.Draft.Schedule.Sessions) != 3 {
		t.Fatalf("AddSession = %v, sessions=%d", err, len(v.Draft.Schedule.Sessions))
	}

	v, err = c.RequestRemoval("c1", 2)
	if err != nil || v.PendingRemoval == nil || *v.PendingRemoval != 2 {
		t.Fatalf("RequestRemoval = %v, %+v", err, v.PendingRemoval)
	}
	v, err = c.CancelRemoval("c1")
	if err != nil || v.PendingRemoval != nil || len(v.Draft.Schedule.Sessions) != 3 {
		t.Fatalf("CancelRemoval = %v, %+v", err, v)
	}
	if _, err := c.ConfirmRemoval("c1"); !errors.Is(err, schedule.ErrNothingPending) {
		t.Errorf("confirm with nothing pending: %v", err)
	}
	_, _ = c.RequestRemoval("c1", 2)
	v, err = c.ConfirmRemoval("c1")
	if err != nil || len(v.Draft.Schedule.Sessions) != 2 {
		t.Fatalf("ConfirmRemoval = %v, sessions=%d", err, len(v.Draft.Schedule.Sessions))
	}
}

func TestConfirmRemoval_SessionPastByThen(t *testing.T) {
	c, _, clk := newTestConsole(t)
	if _, err := c.OpenClass(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RequestRemoval("c1", 1); err != nil {
		t.Fatalf("RequestRemoval: %v", err)
	}

	clk.now = time.Date(2025, 6, 21, 9, 0, 0, 0, time.Local)
	v, err := c.ConfirmRemoval("c1")
	if !errors.Is(err, schedule.ErrPastSession) || !IsRejected(err) {
		t.Fatalf("ConfirmRemoval err = %v, want rejected ErrPastSession", err)
	}
	if len(v.Draft.Schedule.Sessions) != 2 || v.PendingRemoval != nil {
		t.Errorf("view = %+v", v)
	}
}

func TestCommitClass_Success(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	if _, err := c.OpenClass(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	price := 150.0
	_, _ = c.EditClass("c1", ClassPatch{Price: &price})
	_, _ = c.SetThumbnail("c1", class.Upload{Filename: "cover.png", ContentType: "image/png", Data: []byte{1}})

	v, err := c.CommitClass(context.Background(), "c1")
	if err != nil {
		t.Fatalf("CommitClass: %v", err)
	}
	if len(fp.commits) != 1 || fp.commits[0].Price != 150 || fp.commits[0].Thumbnail == nil {
		t.Fatalf("commits = %+v", fp.commits)
	}
	if v.Record.Price != 150 || v.Draft.Price != 150 || v.PendingThumbnail != "" {
		t.Errorf("after commit: %+v", v)
	}
	if v.Record.ThumbnailRef == "" {
		t.Error("record should carry the new thumbnail")
	}
	n, visible := c.Notice()
	if !visible || n.Kind != notice.KindSuccess || n.Message != MsgClassSaved {
		t.Errorf("notice = %+v visible=%v", n, visible)
	}
}

func TestCommitClass_FailureKeepsDraft(t *testing.T) {
	c, fp, clk := newTestConsole(t)
	if _, err := c.OpenClass(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	price := 175.0
	_, _ = c.EditClass("c1", ClassPatch{Price: &price})
	fp.err = platform.Failed("CommitClass", errors.New("502"))

	v, err := c.CommitClass(context.Background(), "c1")
	if !errors.Is(err, platform.ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
	if v.Draft.Price != 175 || v.Record.Price != 100 {
		t.Errorf("draft/record after failure: %v / %v", v.Draft.Price, v.Record.Price)
	}
	n, visible := c.Notice()
	if !visible || n.Kind != notice.KindError || n.Message != MsgClassSaveFailed {
		t.Errorf("notice = %+v visible=%v", n, visible)
	}

	clk.now = clk.now.Add(notice.DefaultTTL)
	if _, visible := c.Notice(); visible {
		t.Error("notice should auto-dismiss")
	}
}

func TestCreateClass_Notices(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	input := orchestrators.CreateClassInput{
		Name: "Korean B1", Language: "Korean", TeacherID: "t1",
		PriceType: class.PerSession, ClassType: schedule.Single,
		Date: "01/07/2025", TimeFrom: "10:00", TimeTo: "11:00",
	}
	created, err := c.CreateClass(context.Background(), input)
	if err != nil || created.ID != "new-1" {
		t.Fatalf("CreateClass = %+v, %v", created, err)
	}
	if n, _ := c.Notice(); n.Message != MsgClassCreated {
		t.Errorf("notice = %+v", n)
	}

	fp.err = platform.Failed("CreateClass", errors.New("500"))
	if _, err := c.CreateClass(context.Background(), input); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := c.Notice(); n.Kind != notice.KindError || n.Message != MsgClassNotCreated {
		t.Errorf("notice = %+v", n)
	}
}

func TestOpenUnit_NavigatesAndSubmits(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	ctx := context.Background()

	v, err := c.OpenUnit(ctx, navigator.Target{CourseID: "k1", UnitID: "u-1"})
	if err != nil {
		t.Fatalf("OpenUnit: %v", err)
	}
	if v.Overview != "One" || !v.CanGoNext || v.CanGoPrevious || v.Target.ViewerID != "admin-1" {
		t.Errorf("view = %+v", v)
	}

	v, err = c.GoTo(ctx, "k1", "u-1", navigator.Previous)
	if err != nil || v.Target.UnitID != "u-1" {
		t.Fatalf("GoTo previous with no neighbour = %+v, %v", v.Target, err)
	}

	v, err = c.GoTo(ctx, "k1", "u-1", navigator.Next)
	if err != nil || v.Target.UnitID != "u-2" || v.Overview != "Two" {
		t.Fatalf("GoTo next = %+v, %v", v, err)
	}
	if _, err := c.Page("k1", "u-1"); !errors.Is(err, ErrPageNotOpen) {
		t.Error("old address should be gone after navigating")
	}

	if _, err := c.BeginEdit("k1", "u-2"); err != nil {
		t.Fatal(err)
	}
	_, _ = c.Type("k1", "u-2", "Edited")
	if v, _ = c.SaveDraft("k1", "u-2"); v.Overview != "Edited" {
		t.Errorf("Overview = %q", v.Overview)
	}
	v, err = c.ReplaceMedia("k1", "u-2", "talk.mp4", "video/mp4", []byte{0})
	if err != nil || v.MediaRef != "/media/previews/talk.mp4" || v.MediaKind != course.Video {
		t.Fatalf("ReplaceMedia = %+v, %v", v, err)
	}

	if _, err := c.Submit(ctx, "k1", "u-2"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(fp.unitSent) != 1 {
		t.Fatalf("unit commits = %d", len(fp.unitSent))
	}
	sent := fp.unitSent[0]
	if sent.Overview != "Edited" || sent.UnitID != "u-2" || sent.File == nil || sent.File.Filename != "talk.mp4" {
		t.Errorf("sent = %+v", sent)
	}
	if n, _ := c.Notice(); n.Message != MsgUnitSaved {
		t.Errorf("notice = %+v", n)
	}
}

func TestOpenUnit_DocumentLoading(t *testing.T) {
	c, _, _ := newTestConsole(t)
	if _, err := c.OpenUnit(context.Background(), navigator.Target{CourseID: "k1", UnitID: "u-2"}); err != nil {
		t.Fatal(err)
	}
	v, err := c.SwitchTab("k1", "u-2", navigator.Lecture)
	if err != nil || !v.IsLoading {
		t.Fatalf("SwitchTab = %+v, %v", v, err)
	}
	if v, _ = c.DocumentLoaded("k1", "u-2"); v.IsLoading {
		t.Error("IsLoading should clear")
	}
	if _, err := c.SwitchTab("k1", "u-2", "quiz"); !IsRejected(err) {
		t.Errorf("unknown tab should be rejected, got %v", err)
	}
	if _, err := c.CancelEdit("k1", "u-2"); !errors.Is(err, navigator.ErrNotEditing) {
		t.Errorf("CancelEdit = %v", err)
	}
}

func TestOpenUnit_FailureAndSubmitFailure(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	if _, err := c.OpenUnit(context.Background(), navigator.Target{CourseID: "k1", UnitID: "missing"}); !errors.Is(err, platform.ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
	if _, visible := c.Notice(); visible {
		t.Error("a failed lookup should not raise a notice")
	}
	if _, err := c.Submit(context.Background(), "k1", "missing"); !errors.Is(err, navigator.ErrNotLoaded) {
		t.Errorf("Submit before load = %v", err)
	}

	if _, err := c.OpenUnit(context.Background(), navigator.Target{CourseID: "k1", UnitID: "u-1"}); err != nil {
		t.Fatal(err)
	}
	fp.err = platform.Failed("CommitUnit", errors.New("502"))
	if _, err := c.Submit(context.Background(), "k1", "u-1"); !errors.Is(err, platform.ErrRequestFailed) {
		t.Fatalf("Submit = %v", err)
	}
	if n, _ := c.Notice(); n.Kind != notice.KindError || n.Message != MsgUnitSaveFailed {
		t.Errorf("notice = %+v", n)
	}
}

func TestGoTo_FailedLookupBlocksSubmit(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	ctx := context.Background()
	if _, err := c.OpenUnit(ctx, navigator.Target{CourseID: "k1", UnitID: "u-1"}); err != nil {
		t.Fatal(err)
	}

	fp.err = platform.Failed("ResolveUnit", errors.New("timeout"))
	v, err := c.GoTo(ctx, "k1", "u-1", navigator.Next)
	if !errors.Is(err, platform.ErrRequestFailed) {
		t.Fatalf("GoTo err = %v, want ErrRequestFailed", err)
	}
	if v.Target.UnitID != "u-2" || v.Loaded || v.Overview != "" || v.Title != "" || v.CanGoNext || v.CanGoPrevious {
		t.Errorf("view after failed lookup = %+v", v)
	}

	fp.err = nil
	if _, err := c.Submit(ctx, "k1", "u-2"); !errors.Is(err, navigator.ErrNotLoaded) {
		t.Errorf("Submit = %v, want ErrNotLoaded", err)
	}
	if len(fp.unitSent) != 0 {
		t.Errorf("platform received %+v", fp.unitSent)
	}

	v, err = c.OpenUnit(ctx, navigator.Target{CourseID: "k1", UnitID: "u-2"})
	if err != nil || v.Overview != "Two" {
		t.Fatalf("reopening = %+v, %v", v, err)
	}
}

func TestOpenUnit_StaleAnswerIsDropped(t *testing.T) {
	c, fp, _ := newTestConsole(t)
	fp.hold = "u-1"
	fp.entered = make(chan struct{})
	fp.release = make(chan struct{})
	target := navigator.Target{CourseID: "k1", UnitID: "u-1"}

	done := make(chan error, 1)
	go func() {
		_, err := c.OpenUnit(context.Background(), target)
		done <- err
	}()
	<-fp.entered

	v, err := c.OpenUnit(context.Background(), target)
	if err != nil || v.Overview != "One" {
		t.Fatalf("second OpenUnit = %+v, %v", v, err)
	}

	close(fp.release)
	if err := <-done; err != nil {
		t.Errorf("superseded lookup returned %v", err)
	}
	if v, _ := c.Page("k1", "u-1"); v.Overview != "One" {
		t.Errorf("Overview = %q, stale answer was applied", v.Overview)
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if !errors.Is(fp.heldErr, context.Canceled) {
		t.Errorf("superseded lookup context err = %v, want Canceled", fp.heldErr)
	}
}

func TestWorkspace_OpenClose(t *testing.T) {
	ws := NewWorkspace(Deps{Platform: &fakePlatform{units: sampleUnits()}, Previews: &fakePreviews{}})
	a := ws.Open("a", testSession)
	if ws.Open("a", testSession) != a {
		t.Error("Open should return the same console for a token")
	}
	ws.Open("b", platform.Session{ViewerID: "admin-2"})
	if ws.Len() != 2 {
		t.Errorf("Len = %d", ws.Len())
	}
	ws.Close("a")
	ws.Close("missing")
	if ws.Len() != 1 {
		t.Errorf("Len = %d after close", ws.Len())
	}
	if a.Session().ViewerID != "admin-1" {
		t.Errorf("Session = %+v", a.Session())
	}
}

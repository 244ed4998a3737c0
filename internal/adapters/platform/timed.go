package platform

import (
	"context"
	"log/slog"
	"time"

	"ezlearn/internal/adapters/http/perf"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/teacher"
)

// Timed decorates a Platform, logging every call and recording its
// duration as a perf.KindPlatform entry.
type Timed struct {
	next      Platform
	collector *perf.Collector
}

var _ Platform = (*Timed)(nil)

// NewTimed wraps next. collector may be nil.
func NewTimed(next Platform, collector *perf.Collector) *Timed {
	return &Timed{next: next, collector: collector}
}

func (t *Timed) observe(op string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		slog.Warn("platform_call_failed", "op", op, "duration_ms", ms, "error", err)
	} else {
		slog.Debug("platform_call", "op", op, "duration_ms", ms)
	}
	t.collector.Record(perf.Entry{
		Kind:       perf.KindPlatform,
		Name:       "platform." + op,
		Failed:     err != nil,
		DurationMs: ms,
		At:         start,
	})
}

func (t *Timed) FetchClass(ctx context.Context, sess Session, classID string) (ClassDetail, error) {
	start := time.Now()
	d, err := t.next.FetchClass(ctx, sess, classID)
	t.observe("FetchClass", start, err)
	return d, err
}

func (t *Timed) CommitClass(ctx context.Context, sess Session, c ClassCommit) (class.Class, error) {
	start := time.Now()
	saved, err := t.next.CommitClass(ctx, sess, c)
	t.observe("CommitClass", start, err)
	return saved, err
}

func (t *Timed) CreateClass(ctx context.Context, sess Session, c NewClass) (class.Class, error) {
	start := time.Now()
	created, err := t.next.CreateClass(ctx, sess, c)
	t.observe("CreateClass", start, err)
	return created, err
}

func (t *Timed) ListTeachers(ctx context.Context, sess Session, language string) ([]teacher.Candidate, error) {
	start := time.Now()
	list, err := t.next.ListTeachers(ctx, sess, language)
	t.observe("ListTeachers", start, err)
	return list, err
}

func (t *Timed) ResolveUnit(ctx context.Context, sess Session, ref UnitRef) (course.Resolution, error) {
	start := time.Now()
	res, err := t.next.ResolveUnit(ctx, sess, ref)
	t.observe("ResolveUnit", start, err)
	return res, err
}

func (t *Timed) CommitUnit(ctx context.Context, sess Session, c UnitCommit) error {
	start := time.Now()
	err := t.next.CommitUnit(ctx, sess, c)
	t.observe("CommitUnit", start, err)
	return err
}

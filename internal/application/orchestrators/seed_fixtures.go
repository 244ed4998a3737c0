package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"ezlearn/internal/adapters/storage/enrollment"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// Fixtures is the YAML document used to seed a local platform.
type Fixtures struct {
	Teachers []teacher.Candidate `yaml:"teachers"`
	Classes  []ClassFixture      `yaml:"classes"`
	Courses  []course.Course     `yaml:"courses"`
}

// ClassFixture is a class with its enrolled students.
type ClassFixture struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	TeacherID   string             `yaml:"teacherId"`
	Language    string             `yaml:"language"`
	MaxStudents int                `yaml:"maxStudents"`
	Price       float64            `yaml:"price"`
	PriceType   class.PriceType    `yaml:"priceType"`
	Status      class.Status       `yaml:"status"`
	ClassType   schedule.ClassType `yaml:"classType"`
	Sessions    []schedule.Session `yaml:"sessions"`
	ClassURL    string             `yaml:"classUrl"`
	Students    []StudentFixture   `yaml:"students"`
}

// StudentFixture is one enrolment.
type StudentFixture struct {
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	PhoneNumber   string `yaml:"phone"`
	PaymentStatus string `yaml:"paymentStatus"`
}

// ParseFixtures decodes a fixtures document, rejecting unknown keys.
// PRE: r yields YAML
// POST: Returns the fixtures or a decode error naming the line
func ParseFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// SeedFixturesDeps holds stores needed for seeding.
type SeedFixturesDeps struct {
	TeacherStore    seedTeacherStore
	ClassStore      seedClassStore
	EnrollmentStore seedEnrollmentStore
	CourseStore     seedCourseStore
	GenerateID      func() string
	Now             func() time.Time
}

type seedTeacherStore interface {
	GetByID(ctx context.Context, id string) (teacher.Candidate, error)
	Save(ctx context.Context, c teacher.Candidate) error
}

type seedClassStore interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
	Save(ctx context.Context, c class.Class) error
}

type seedEnrollmentStore interface {
	Save(ctx context.Context, r enrollment.Record) error
}

type seedCourseStore interface {
	GetByID(ctx context.Context, id string) (course.Course, error)
	Save(ctx context.Context, c course.Course) error
}

// ExecuteSeedFixtures writes fixtures that are not stored yet. Records
// already present (matched by id) are left as they are.
// PRE: Database is migrated
// POST: Every fixture id exists in its store
func ExecuteSeedFixtures(ctx context.Context, f Fixtures, deps SeedFixturesDeps) error {
	names := make(map[string]string, len(f.Teachers))
	created := 0
	for _, t := range f.Teachers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("seed teacher %q: %w", t.ID, err)
		}
		names[t.ID] = t.FullName
		if _, err := deps.TeacherStore.GetByID(ctx, t.ID); err == nil {
			continue
		}
		if err := deps.TeacherStore.Save(ctx, t); err != nil {
			return fmt.Errorf("seed teacher %q: %w", t.ID, err)
		}
		created++
	}

	for _, cf := range f.Classes {
		if _, err := deps.ClassStore.GetByID(ctx, cf.ID); err == nil {
			continue
		}
		c := class.Class{
			ID:          cf.ID,
			Name:        cf.Name,
			TeacherID:   cf.TeacherID,
			TeacherName: names[cf.TeacherID],
			Language:    cf.Language,
			MaxStudents: cf.MaxStudents,
			Price:       cf.Price,
			PriceType:   cf.PriceType,
			Status:      cf.Status,
			Schedule:    schedule.Model{Type: cf.ClassType, Sessions: cf.Sessions},
			ClassURL:    cf.ClassURL,
		}
		if c.Status == "" {
			c.Status = class.StatusOpen
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("seed class %q: %w", cf.ID, err)
		}
		if err := deps.ClassStore.Save(ctx, c); err != nil {
			return fmt.Errorf("seed class %q: %w", cf.ID, err)
		}
		for i, s := range cf.Students {
			status := s.PaymentStatus
			if status == "" {
				status = class.PaymentPending
			}
			err := deps.EnrollmentStore.Save(ctx, enrollment.Record{
				ID:      deps.GenerateID(),
				ClassID: c.ID,
				Student: class.Student{Name: s.Name, Email: s.Email, PhoneNumber: s.PhoneNumber, PaymentStatus: status},
				// keep fixture order as enrolment order
				EnrolledAt: deps.Now().Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				return fmt.Errorf("seed student %q of %q: %w", s.Name, cf.ID, err)
			}
		}
		created++
	}

	for _, c := range f.Courses {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("seed course %q: %w", c.ID, err)
		}
		if _, err := deps.CourseStore.GetByID(ctx, c.ID); err == nil {
			continue
		}
		for gi := range c.Groups {
			for ui := range c.Groups[gi].Units {
				u := &c.Groups[gi].Units[ui]
				u.MediaKind = course.ParseMediaKind(string(u.MediaKind))
			}
		}
		if err := deps.CourseStore.Save(ctx, c); err != nil {
			return fmt.Errorf("seed course %q: %w", c.ID, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seed_event", "event", "fixtures_seeded", "created", created,
			"teachers", len(f.Teachers), "classes", len(f.Classes), "courses", len(f.Courses))
	}
	return nil
}

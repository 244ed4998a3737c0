package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// ErrNoSessions is returned when a weekly class would have no dated session.
var ErrNoSessions = errors.New("no weekly slot falls between the start and end dates")

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateClassPlatform is the part of the platform class creation needs.
type CreateClassPlatform interface {
	CreateClass(ctx context.Context, sess platform.Session, c platform.NewClass) (class.Class, error)
	ListTeachers(ctx context.Context, sess platform.Session, language string) ([]teacher.Candidate, error)
}

// CreateClassInput is the class creation form. A single class names one
// Date; a weekly class names recurring Slots between StartDate and EndDate.
type CreateClassInput struct {
	Session     platform.Session      `validate:"-"`
	Name        string                `validate:"required"`
	Language    string                `validate:"required"`
	TeacherID   string                `validate:"required"`
	MaxStudents int                   `validate:"gte=0"`
	ClassURL    string                `validate:"omitempty,url"`
	Price       float64               `validate:"gte=0"`
	PriceType   class.PriceType       `validate:"required,oneof=byDay byCourse"`
	ClassType   schedule.ClassType    `validate:"required,oneof=singleClass classByWeeks"`
	Date        string                `validate:"required_if=ClassType singleClass"`
	TimeFrom    string                `validate:"required_if=ClassType singleClass"`
	TimeTo      string                `validate:"required_if=ClassType singleClass"`
	Slots       []schedule.WeeklySlot `validate:"required_if=ClassType classByWeeks,dive"`
	StartDate   string                `validate:"required_if=ClassType classByWeeks"`
	EndDate     string                `validate:"required_if=ClassType classByWeeks"`
}

// CreateClassDeps holds dependencies for ExecuteCreateClass.
type CreateClassDeps struct {
	Platform CreateClassPlatform
	Now      func() time.Time
}

// ExecuteCreateClass validates the form, expands a weekly class into dated
// sessions and asks the platform to create it.
// PRE: input.TeacherID names a teacher of input.Language
// POST: Returns the created class, open and without students
func ExecuteCreateClass(ctx context.Context, input CreateClassInput, deps CreateClassDeps) (class.Class, error) {
	if err := validate.Struct(input); err != nil {
		return class.Class{}, err
	}

	model, err := buildSchedule(input, deps.Now().Location())
	if err != nil {
		return class.Class{}, err
	}

	candidates, err := deps.Platform.ListTeachers(ctx, input.Session, input.Language)
	if err != nil {
		return class.Class{}, err
	}
	t, ok := teacher.Find(candidates, input.TeacherID)
	if !ok {
		return class.Class{}, class.ErrUnknownTeacher
	}

	created, err := deps.Platform.CreateClass(ctx, input.Session, platform.NewClass{
		Name:        strings.TrimSpace(input.Name),
		Language:    input.Language,
		TeacherID:   t.ID,
		TeacherName: t.FullName,
		MaxStudents: input.MaxStudents,
		ClassURL:    input.ClassURL,
		Price:       input.Price,
		PriceType:   input.PriceType,
		Schedule:    model,
	})
	if err != nil {
		slog.Warn("class_event", "event", "class_create_failed", "name", input.Name, "error", err)
		return class.Class{}, err
	}
	slog.Info("class_event", "event", "class_created", "class_id", created.ID,
		"class_type", model.Type, "sessions", len(model.Sessions))
	return created, nil
}

func buildSchedule(input CreateClassInput, loc *time.Location) (schedule.Model, error) {
	if input.ClassType == schedule.Single {
		if _, err := time.ParseInLocation(schedule.DateLayout, input.Date, loc); err != nil {
			return schedule.Model{}, fmt.Errorf("date %q: %w", input.Date, err)
		}
		return schedule.NewSingle(schedule.Session{Date: input.Date, TimeFrom: input.TimeFrom, TimeTo: input.TimeTo}), nil
	}

	from, err := time.ParseInLocation(schedule.DateLayout, input.StartDate, loc)
	if err != nil {
		return schedule.Model{}, fmt.Errorf("start date %q: %w", input.StartDate, err)
	}
	to, err := time.ParseInLocation(schedule.DateLayout, input.EndDate, loc)
	if err != nil {
		return schedule.Model{}, fmt.Errorf("end date %q: %w", input.EndDate, err)
	}
	for _, s := range input.Slots {
		if err := s.Validate(); err != nil {
			return schedule.Model{}, err
		}
	}
	model, err := schedule.ExpandWeekly(input.Slots, from, to)
	if err != nil {
		return schedule.Model{}, err
	}
	if len(model.Sessions) == 0 {
		return schedule.Model{}, ErrNoSessions
	}
	return model, nil
}

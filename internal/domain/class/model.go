package class

import (
	"errors"
	"strings"

	"ezlearn/internal/domain/schedule"
)

// PriceType says what the price buys.
type PriceType string

const (
	PerSession PriceType = "byDay"
	PerCourse  PriceType = "byCourse"
)

// Status is set by an admin. It is never derived from the schedule, so a
// class whose last session has passed stays Open until someone closes it.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Payment statuses reported for enrolled students.
const (
	PaymentSuccess = "Success"
	PaymentPending = "Pending"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("class name cannot be empty")
	ErrEmptyLanguage     = errors.New("teaching language cannot be empty")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrInvalidPriceType  = errors.New("price type must be byDay or byCourse")
	ErrInvalidStatus     = errors.New("status must be open or closed")
	ErrNegativeEnrolment = errors.New("student count cannot be negative")
)

// Class is the authoritative class record as returned by the platform.
type Class struct {
	ID                  string         `json:"_id"`
	Name                string         `json:"className"`
	TeacherID           string         `json:"teacherId"`
	TeacherName         string         `json:"teacherName"`
	Language            string         `json:"language"`
	MaxStudents         int            `json:"maxStudent,omitempty"`
	Price               float64        `json:"price"`
	PriceType           PriceType      `json:"priceType"`
	Status              Status         `json:"status"`
	Schedule            schedule.Model `json:"schedule"`
	CurrentStudentCount int            `json:"currentStudent"`
	ClassURL            string         `json:"classUrl"`
	ThumbnailRef        string         `json:"thumbnail,omitempty"`
}

// Student is an enrolled learner as listed on the class detail page.
type Student struct {
	Name          string `json:"studentName"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	PaymentStatus string `json:"paymentStatus"`
}

// HasPaid reports whether the student's payment went through.
func (s Student) HasPaid() bool {
	return s.PaymentStatus == PaymentSuccess
}

// Validate checks if the Class has valid data.
// PRE: Class struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Language) == "" {
		return ErrEmptyLanguage
	}
	if c.Price < 0 {
		return ErrNegativePrice
	}
	if c.PriceType != PerSession && c.PriceType != PerCourse {
		return ErrInvalidPriceType
	}
	if c.Status != StatusOpen && c.Status != StatusClosed {
		return ErrInvalidStatus
	}
	if c.CurrentStudentCount < 0 {
		return ErrNegativeEnrolment
	}
	return c.Schedule.Validate()
}

// NameLocked reports whether the class name is frozen. Once anyone has
// enrolled the name can no longer change.
func (c *Class) NameLocked() bool {
	return c.CurrentStudentCount > 0
}

package teacher

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyID       = errors.New("teacher ID cannot be empty")
	ErrEmptyFullName = errors.New("teacher full name cannot be empty")
	ErrEmptyLanguage = errors.New("teaching language cannot be empty")
)

// Candidate is a teacher who may be assigned to a class taught in Language.
type Candidate struct {
	ID       string `json:"_id" yaml:"id"`
	FullName string `json:"fullName" yaml:"fullName"`
	Language string `json:"teachingLanguage,omitempty" yaml:"language"`
}

// Validate checks if the Candidate has valid data.
// PRE: Candidate struct is populated
// POST: Returns nil if valid, error otherwise
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.FullName) == "" {
		return ErrEmptyFullName
	}
	if strings.TrimSpace(c.Language) == "" {
		return ErrEmptyLanguage
	}
	return nil
}

// Find returns the candidate with the given id.
func Find(candidates []Candidate, id string) (Candidate, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

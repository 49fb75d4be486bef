package models

import (
	"regexp"
	"strings"

	dErrors "programtrack/pkg/domain-errors"
)

var englishNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Program is a named distribution campaign with its own member roster.
//
// Invariants:
//   - EnglishName matches ^[A-Za-z][A-Za-z0-9_-]*$ and is unique in the registry
//   - EnglishName doubles as the program's directory name, so it never holds a path separator
//   - ArabicName is non-empty
//   - Programs are never deleted; only ArabicName and Visible change
type Program struct {
	EnglishName string `json:"english_name"`
	ArabicName  string `json:"arabic_name"`
	Visible     bool   `json:"visible"`
}

// ProgramDetails is a program together with its member counts.
type ProgramDetails struct {
	*Program
	Total    int `json:"total_members"`
	Received int `json:"received_count"`
}

// ValidEnglishName reports whether name can be used as a program key.
func ValidEnglishName(name string) bool {
	return englishNamePattern.MatchString(name)
}

// NewProgram validates the inputs and returns a visible program.
func NewProgram(englishName, arabicName string) (*Program, error) {
	englishName = strings.TrimSpace(englishName)
	arabicName = strings.TrimSpace(arabicName)
	if englishName == "" || arabicName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "english name and arabic name are required")
	}
	if !ValidEnglishName(englishName) {
		return nil, dErrors.New(dErrors.CodeValidation,
			"english name must start with a letter and contain only letters, digits, underscores and hyphens")
	}
	return &Program{
		EnglishName: englishName,
		ArabicName:  arabicName,
		Visible:     true,
	}, nil
}

// Rename replaces the display name.
func (p *Program) Rename(arabicName string) error {
	arabicName = strings.TrimSpace(arabicName)
	if arabicName == "" {
		return dErrors.New(dErrors.CodeValidation, "arabic name is required")
	}
	p.ArabicName = arabicName
	return nil
}

// ToggleVisibility flips whether the program is offered on the public list.
func (p *Program) ToggleVisibility() {
	p.Visible = !p.Visible
}

// DisplayName is the Arabic name, or the key when no Arabic name is stored.
func (p *Program) DisplayName() string {
	if p.ArabicName != "" {
		return p.ArabicName
	}
	return p.EnglishName
}

package models

import (
	"strings"
	"time"

	dErrors "programtrack/pkg/domain-errors"
)

// DateLayout is how receipt timestamps are stored.
const DateLayout = "2006-01-02 15:04:05"

// Member is one registered individual inside a program.
//
// Invariants:
//   - NationalID is unique within its program (not across programs)
//   - DateReceived is empty until HasReceived is set
type Member struct {
	NationalID   string `json:"national_id"`
	FullName     string `json:"full_name"`
	HasReceived  bool   `json:"has_received"`
	DateReceived string `json:"date_received"`
}

// NewMember validates the inputs and returns a member who has not received yet.
func NewMember(nationalID, fullName string) (*Member, error) {
	nationalID = strings.TrimSpace(nationalID)
	fullName = strings.TrimSpace(fullName)
	if nationalID == "" || fullName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "national id and full name are required")
	}
	return &Member{NationalID: nationalID, FullName: fullName}, nil
}

// MarkReceived records receipt at now. Calling it again moves the timestamp.
func (m *Member) MarkReceived(now time.Time) {
	m.HasReceived = true
	m.DateReceived = now.Format(DateLayout)
}

// ReceivedAt parses DateReceived. The zero time is returned when it is unset
// or unparseable.
func (m *Member) ReceivedAt() time.Time {
	t, err := time.ParseInLocation(DateLayout, m.DateReceived, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Summary counts a program's members.
type Summary struct {
	Total    int `json:"total"`
	Received int `json:"received"`
}

// ImportResult reports how the rows of a bulk import were handled.
type ImportResult struct {
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
	Malformed int `json:"malformed"`
}

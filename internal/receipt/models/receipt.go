package models

import "time"

// UnknownMember is shown for receipts whose member is no longer in the table.
const UnknownMember = "غير معروف"

// Receipt describes a generated PDF.
type Receipt struct {
	Path              string    `json:"path"`
	SignatureEmbedded bool      `json:"signature_embedded"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Entry is one receipt found in a program directory.
type Entry struct {
	Filename   string    `json:"filename"`
	NationalID string    `json:"national_id"`
	FullName   string    `json:"full_name"`
	Date       time.Time `json:"date"`
}

// DisplayDate renders Date the way member timestamps are stored.
func (e Entry) DisplayDate() string {
	return e.Date.Format("2006-01-02 15:04:05")
}

// Package importer turns an uploaded member sheet into candidate rows.
//
// Uploads come from spreadsheets saved in whatever encoding the operator's
// tools produce and with English or Arabic column headings, so decoding and
// column lookup are both table driven.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	pstrings "programtrack/pkg/platform/strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MaxFieldRunes caps the length of a single cell.
const MaxFieldRunes = 131072

var (
	// ErrUndecodable is returned when no decoder accepts the input.
	ErrUndecodable = errors.New("importer: input matches no supported encoding")

	// ErrFieldTooLarge is returned for a cell longer than MaxFieldRunes.
	ErrFieldTooLarge = errors.New("importer: field larger than field limit")
)

type decoder struct {
	name   string
	decode func(raw []byte) (string, bool)
}

// decoders are tried in order; the first to accept the bytes wins.
var decoders = []decoder{
	{name: "utf-8-sig", decode: func(raw []byte) (string, bool) {
		if !bytes.HasPrefix(raw, utf8BOM) || !utf8.Valid(raw[len(utf8BOM):]) {
			return "", false
		}
		return string(raw[len(utf8BOM):]), true
	}},
	{name: "utf-8", decode: func(raw []byte) (string, bool) {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}},
	{name: "latin-1", decode: func(raw []byte) (string, bool) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	}},
}

// Columns lists, per logical field, the header names accepted for it in
// priority order.
var Columns = struct {
	NationalID []string
	FullName   []string
}{
	NationalID: []string{"NationalID", "nationalid", "National ID", "رقم الهوية", "رقم_الهوية"},
	FullName:   []string{"FullName", "fullname", "Full Name", "الاسم", "الاسم الكامل", "الاسم_الكامل"},
}

// Row is one data row with its fields resolved. Either field may be empty.
type Row struct {
	Line       int
	NationalID string
	FullName   string
}

// Complete reports whether both fields resolved to a value.
func (r Row) Complete() bool {
	return r.NationalID != "" && r.FullName != ""
}

// Decode converts raw upload bytes to text and names the encoding used.
func Decode(raw []byte) (text string, encoding string, err error) {
	for _, d := range decoders {
		if text, ok := d.decode(raw); ok {
			return text, d.name, nil
		}
	}
	return "", "", ErrUndecodable
}

// Parse reads a header row followed by data rows and resolves each row
// through Columns. Columns that are not listed are ignored. Surrounding
// blank lines are dropped and stray quotes inside unquoted cells are kept
// as text.
func Parse(text string) ([]Row, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkFields(header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := indexHeader(header)

	var rows []Row
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		if err := checkFields(fields); err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line:       line,
			NationalID: resolve(index, fields, Columns.NationalID),
			FullName:   resolve(index, fields, Columns.FullName),
		})
	}
	return rows, nil
}

// Read decodes and parses raw in one step.
func Read(raw []byte) ([]Row, error) {
	text, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

func checkFields(fields []string) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f) > MaxFieldRunes {
			return ErrFieldTooLarge
		}
	}
	return nil
}

func indexHeader(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

func resolve(index map[string]int, fields []string, aliases []string) string {
	values := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if i, ok := index[alias]; ok && i < len(fields) {
			values = append(values, fields[i])
		}
	}
	return pstrings.FirstNonEmpty(values...)
}

package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"greentrack/internal/normalize"
)

const utf8BOM = "\uFEFF"

// Record is one data row projected onto a mapping's attributes. Attributes
// whose column is absent from the file read as empty.
type Record struct {
	values map[string]string
	dates  map[string]time.Time
}

// Text returns the trimmed value of attr; "" when absent.
func (r Record) Text(attr string) string {
	return strings.TrimSpace(r.values[attr])
}

// TextPtr is Text with "" mapped to nil.
func (r Record) TextPtr(attr string) *string {
	if s := r.Text(attr); s != "" {
		return &s
	}
	return nil
}

func (r Record) Number(attr string) *float64 {
	return normalize.Optional(normalize.ParseNumber(r.values[attr]))
}

func (r Record) DistanceKm(attr string) *float64 {
	return normalize.Optional(normalize.ParseDistanceKm(r.values[attr]))
}

func (r Record) DurationMin(attr string) *float64 {
	return normalize.Optional(normalize.ParseDurationMinutes(r.values[attr]))
}

// Date returns the parsed value of a date attribute declared on the mapping.
func (r Record) Date(attr string) *time.Time {
	if t, ok := r.dates[attr]; ok {
		return &t
	}
	return nil
}

// Table is the content of one extract file after mapping.
type Table struct {
	Path    string
	Missing []string
	Records []Record
	// Skipped counts malformed lines that were ignored.
	Skipped int
}

// readTable decodes the file at path and projects it through m. Files that
// are not valid UTF-8 are decoded as Windows-1252.
func readTable(path string, m TableMapping, log logrus.FieldLogger) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		decoded, derr := charmap.Windows1252.NewDecoder().Bytes(raw)
		if derr != nil {
			return nil, fmt.Errorf("decode %s: %w", path, derr)
		}
		log.WithField("file", path).Debug("decoded as windows-1252")
		raw = decoded
	}
	raw = bytes.TrimPrefix(raw, []byte(utf8BOM))

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = m.Comma
	if r.Comma == 0 {
		r.Comma = ','
	}
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = NormalizeHeader(header[i])
	}

	b := m.bind(header)
	t := &Table{Path: path, Missing: b.missing}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			t.Skipped++
			log.WithField("file", path).WithError(err).Warn("skipping malformed line")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		rec := Record{values: make(map[string]string, len(b.index))}
		for attr, i := range b.index {
			if i < len(row) {
				rec.values[attr] = row[i]
			}
		}
		for _, attr := range m.DateColumns {
			if d, ok := normalize.ParseDate(rec.values[attr]); ok {
				if rec.dates == nil {
					rec.dates = make(map[string]time.Time, len(m.DateColumns))
				}
				rec.dates[attr] = d
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

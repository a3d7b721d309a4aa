// Package fixedwidth provides byte-range field extraction and parsing
// helpers for fixed-width record formats such as ATCO-CIF. It follows the
// same per-column-getter shape as the gtfs csv file parser this module's
// GTFS reader uses, generalised from column-index lookup to byte offsets.
package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transitstream/timetables/foundation/timeoffset"
)

// Line wraps a single fixed-width record, tracking the originating file
// name and line number so parse errors can be reported with location.
type Line struct {
	Filename string
	Number   int
	Bytes    []byte
	errors   []error
}

// NewLine builds a Line from raw bytes.
func NewLine(filename string, number int, raw []byte) *Line {
	return &Line{Filename: filename, Number: number, Bytes: raw}
}

// Field returns the substring of the line in the half-open byte range
// [start, end), trimmed of surrounding whitespace. Out-of-range slices are
// truncated rather than panicking, since real feeds often pad short lines.
func (l *Line) Field(start, end int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(l.Bytes) {
		return ""
	}
	if end > len(l.Bytes) {
		end = len(l.Bytes)
	}
	if end < start {
		return ""
	}
	return strings.TrimSpace(string(l.Bytes[start:end]))
}

// Tag returns the two-byte record type identifier at the start of the line.
func (l *Line) Tag() string {
	return l.Field(0, 2)
}

// Int parses the field as a base-10 integer, recording a parse error and
// returning 0 on failure.
func (l *Line) Int(start, end int) int {
	s := l.Field(start, end)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		l.errors = append(l.errors, fmt.Errorf("field [%d:%d]: %w", start, end, err))
		return 0
	}
	return v
}

// Decimal parses the field as an exact decimal, returning decimal.Zero and
// recording a parse error on failure.
func (l *Line) Decimal(start, end int) decimal.Decimal {
	s := l.Field(start, end)
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		l.errors = append(l.errors, fmt.Errorf("field [%d:%d]: %w", start, end, err))
		return decimal.Zero
	}
	return v
}

// Date parses an 8-byte YYYYMMDD field. A literal "99999999" means
// open-ended and returns nil.
func (l *Line) Date(start, end int) *time.Time {
	s := l.Field(start, end)
	if s == "" || s == "99999999" {
		return nil
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		l.errors = append(l.errors, fmt.Errorf("field [%d:%d]: %w", start, end, err))
		return nil
	}
	return &t
}

// HHMM parses a 4-byte HHMM field into a timeoffset.TimeOffset.
func (l *Line) HHMM(start, end int) timeoffset.TimeOffset {
	s := l.Field(start, end)
	if len(s) < 3 {
		return timeoffset.Zero
	}
	s = fmt.Sprintf("%04s", s)
	hours, err := strconv.Atoi(s[0:2])
	if err != nil {
		l.errors = append(l.errors, fmt.Errorf("field [%d:%d]: %w", start, end, err))
		return timeoffset.Zero
	}
	minutes, err := strconv.Atoi(s[2:4])
	if err != nil {
		l.errors = append(l.errors, fmt.Errorf("field [%d:%d]: %w", start, end, err))
		return timeoffset.Zero
	}
	return timeoffset.FromHMS(hours, minutes, 0)
}

// WeekdayMask parses a 7-character '0'/'1' mask in Monday..Sunday order.
func (l *Line) WeekdayMask(start, end int) [7]bool {
	var mask [7]bool
	s := l.Field(start, end)
	for i := 0; i < 7 && i < len(s); i++ {
		mask[i] = s[i] == '1'
	}
	return mask
}

// Error returns the accumulated parse errors for the line, or nil if none
// occurred. Location information (filename, line number) is included so
// callers can log per §7's parse-error taxonomy and continue.
func (l *Line) Error() error {
	if len(l.errors) == 0 {
		return nil
	}
	return fmt.Errorf("%s:%d: %v", l.Filename, l.Number, l.errors)
}

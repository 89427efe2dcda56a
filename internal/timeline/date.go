package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/jwalitptl/clinic-console/internal/model"
)

type DateClass string

const (
	DateMissing    DateClass = "missing"
	DateInvalid    DateClass = "invalid"
	DateOutOfRange DateClass = "out-of-range"
	DateValid      DateClass = "valid"
)

const (
	minYear         = 1900
	maxYearsAhead   = 10
	dayMonthYearFmt = "2/1/2006"
)

// dateFormats are the encodings the backend has been seen to emit.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	dayMonthYearFmt,
}

// Resolve returns the first candidate field holding a non-empty value.
func Resolve(fields model.JSONMap, candidates ...string) (string, bool) {
	for _, name := range candidates {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		default:
			s = fmt.Sprint(val)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// Classify parses value and sorts it into exactly one DateClass. The time is
// only meaningful for DateValid and DateOutOfRange.
func Classify(value string, ref time.Time) (time.Time, DateClass) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, DateMissing
	}
	cfg := &now.Config{
		TimeLocation: ref.Location(),
		TimeFormats:  dateFormats,
	}
	t, err := cfg.Parse(value)
	if err != nil {
		return time.Time{}, DateInvalid
	}
	if t.Year() < minYear || t.Year() > ref.Year()+maxYearsAhead {
		return t, DateOutOfRange
	}
	return t, DateValid
}

// resolveDate combines Resolve and Classify. The returned pointer is set only
// for valid dates.
func resolveDate(fields model.JSONMap, ref time.Time, candidates []string) (*time.Time, DateClass) {
	raw, ok := Resolve(fields, candidates...)
	if !ok {
		return nil, DateMissing
	}
	t, class := Classify(raw, ref)
	if class != DateValid {
		return nil, class
	}
	return &t, class
}

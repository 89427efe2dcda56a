package calendar

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jinzhu/now"

	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

const (
	GridCells = 42
	dmyLayout = "2/1/2006"
)

var dmyPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// Day is a calendar date without time or zone.
type Day struct {
	Day   int        `json:"day"`
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Day: d, Month: m, Year: y}
}

func (d Day) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Day, int(d.Month), d.Year)
}

func (d Day) time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ParseDMY accepts only D/M/YYYY with one or two digit day and month, and
// only real calendar dates.
func ParseDMY(s string) (Day, error) {
	if !dmyPattern.MatchString(s) {
		return Day{}, apperrors.Validation(fmt.Sprintf("date %q is not D/M/YYYY", s), nil)
	}
	t, err := time.Parse(dmyLayout, s)
	if err != nil {
		return Day{}, apperrors.Validation(fmt.Sprintf("date %q does not exist", s), err)
	}
	return DayOf(t), nil
}

// HighlightSet holds the days flagged on the grid.
type HighlightSet map[Day]struct{}

func (h HighlightSet) Has(d Day) bool {
	_, ok := h[d]
	return ok
}

// Highlights keeps the dates strictly after today's date. Malformed dates are
// skipped and duplicates collapse.
func Highlights(dates []string, ref time.Time) HighlightSet {
	today := now.With(ref).BeginningOfDay()
	set := HighlightSet{}
	for _, s := range dates {
		d, err := ParseDMY(s)
		if err != nil {
			continue
		}
		if d.time(ref.Location()).After(today) {
			set[d] = struct{}{}
		}
	}
	return set
}

// Month is the displayed month. Navigation returns new values.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// NewMonth validates month and year as they arrive from a query string.
func NewMonth(month, year int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, apperrors.Validation(fmt.Sprintf("month %d is out of range", month), nil)
	}
	if year < 1 || year > 9999 {
		return Month{}, apperrors.Validation(fmt.Sprintf("year %d is out of range", year), nil)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) first(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Cell is one day of the 6x7 grid.
type Cell struct {
	Day            Day  `json:"date"`
	CurrentMonth   bool `json:"currentMonth"`
	Today          bool `json:"today"`
	HasAppointment bool `json:"hasAppointment"`
}

// Grid lays out m as 42 cells starting on Sunday: the tail of the previous
// month, every day of m, then the head of the next month. Today and
// appointment flags are only set on days of m.
func Grid(m Month, ref time.Time, highlights HighlightSet) []Cell {
	loc := ref.Location()
	first := now.With(m.first(loc))
	lastDay := first.EndOfMonth().Day()
	prevLastDay := now.With(m.Prev().first(loc)).EndOfMonth().Day()
	lead := int(first.Weekday())
	today := DayOf(ref)

	cells := make([]Cell, 0, GridCells)
	prev := m.Prev()
	for i := lead - 1; i >= 0; i-- {
		cells = append(cells, Cell{Day: Day{Day: prevLastDay - i, Month: prev.Month, Year: prev.Year}})
	}
	for d := 1; d <= lastDay; d++ {
		day := Day{Day: d, Month: m.Month, Year: m.Year}
		cells = append(cells, Cell{
			Day:            day,
			CurrentMonth:   true,
			Today:          day == today,
			HasAppointment: highlights.Has(day),
		})
	}
	next := m.Next()
	for d := 1; len(cells) < GridCells; d++ {
		cells = append(cells, Cell{Day: Day{Day: d, Month: next.Month, Year: next.Year}})
	}
	return cells
}

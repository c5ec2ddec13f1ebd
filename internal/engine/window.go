package engine

import (
	"errors"
	"time"

	"expensetracker/internal/models"
)

// ErrInvalidWindow is returned when a window starts after it ends.
var ErrInvalidWindow = errors.New("window start must not be after end")

// Window is a closed-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window, rejecting start > end.
func NewWindow(start, end time.Time) (Window, error) {
	if start.After(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// UTC returns the window with both bounds converted to UTC.
func (w Window) UTC() Window {
	return Window{Start: w.Start.UTC(), End: w.End.UTC()}
}

// MonthWindow returns [first day of now's month, first day of next month)
// in now's location.
func MonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// PeriodWindow returns the window containing now for the given budget period.
// Weeks start on Monday. Unknown periods use the calendar month.
func PeriodWindow(period models.BudgetPeriod, now time.Time) Window {
	loc := now.Location()
	switch period {
	case models.BudgetPeriodWeekly:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}
	case models.BudgetPeriodQuarterly:
		firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 3, 0)}
	case models.BudgetPeriodYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(1, 0, 0)}
	default:
		return MonthWindow(now)
	}
}

// Span returns the smallest window covering every given window. It returns
// false when ws is empty.
func Span(ws ...Window) (Window, bool) {
	if len(ws) == 0 {
		return Window{}, false
	}
	out := ws[0]
	for _, w := range ws[1:] {
		if w.Start.Before(out.Start) {
			out.Start = w.Start
		}
		if w.End.After(out.End) {
			out.End = w.End
		}
	}
	return out, true
}

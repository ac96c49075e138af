// Package calendar builds the month view grid the front end renders:
// a fixed 6x7 layout of days padded with the tail of the previous month
// and the head of the next one.
package calendar

import (
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/model"
)

// GridSize is the number of cells in a month grid: 6 rows of 7 days,
// enough to display any month with leading and trailing padding.
const GridSize = 42

// DayCell is one square of the grid: a single calendar date, whether it
// belongs to the displayed month, and the events falling on that date.
type DayCell struct {
	Date         time.Time     `json:"date"`
	CurrentMonth bool          `json:"current_month"`
	Events       []model.Event `json:"events"`
}

// EventsFunc returns the events on a given date. The date is always
// midnight UTC; implementations are expected to bucket by calendar day.
// Event order within a cell follows the order returned here.
type EventsFunc func(date time.Time) []model.Event

// BuildMonthGrid returns the 42-cell grid for the given year and month.
// Month is 1-indexed (time.January..time.December); anything else is an
// InvalidArgument error. The grid starts on the Sunday on or before the
// 1st of the month and covers 42 contiguous dates, so December spills
// into the next January and January reaches back into the previous
// December as needed.
//
// The function is pure: identical inputs and an identical lookup produce
// identical output.
func BuildMonthGrid(year int, month time.Month, eventsOn EventsFunc) ([]DayCell, error) {
	if month < time.January || month > time.December {
		return nil, apperr.InvalidArgument("month out of range: %d", int(month))
	}

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(firstDay.Weekday()) // 0=Sunday .. 6=Saturday
	start := firstDay.AddDate(0, 0, -lead)

	cells := make([]DayCell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		date := start.AddDate(0, 0, i)
		cell := DayCell{
			Date:         date,
			CurrentMonth: date.Month() == month && date.Year() == year,
		}
		if eventsOn != nil {
			cell.Events = eventsOn(date)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// EventsByDate buckets a pre-fetched event list by calendar day and
// returns a lookup suitable for BuildMonthGrid. Relative order within a
// day is preserved from the input slice.
func EventsByDate(events []model.Event) EventsFunc {
	byDay := make(map[time.Time][]model.Event, len(events))
	for _, e := range events {
		day := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] = append(byDay[day], e)
	}
	return func(date time.Time) []model.Event {
		return byDay[date]
	}
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

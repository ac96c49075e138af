package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/calendar"
	"github.com/pablodelgado26/family-organizer/internal/store"
)

type CalendarHandler struct {
	events *store.EventStore
	groups *store.GroupStore
	logger *slog.Logger
}

func NewCalendarHandler(es *store.EventStore, gs *store.GroupStore, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{events: es, groups: gs, logger: logger}
}

type monthGridResponse struct {
	Year  int                `json:"year"`
	Month int                `json:"month"`
	Days  []calendar.DayCell `json:"days"`
}

// MonthGrid returns the 42-cell month view. The month query parameter is
// 0-indexed (0=January), matching what JavaScript Date#getMonth produces;
// the response month is 0-indexed too. Defaults to the current month.
func (h *CalendarHandler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 9999 {
			writeError(w, h.logger, apperr.InvalidArgument("year must be a four digit year"))
			return
		}
		year = n
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 11 {
			writeError(w, h.logger, apperr.InvalidArgument("month must be 0-11"))
			return
		}
		month = time.Month(n + 1)
	}

	// The grid spans 42 contiguous days starting on the Sunday on or
	// before the 1st, so fetch that whole window in one query.
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := firstDay.AddDate(0, 0, -int(firstDay.Weekday()))
	end := start.AddDate(0, 0, calendar.GridSize)

	events, err := h.events.ListByDateRange(groupID, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	cells, err := calendar.BuildMonthGrid(year, month, calendar.EventsByDate(events))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, monthGridResponse{
		Year:  year,
		Month: int(month) - 1,
		Days:  cells,
	})
}

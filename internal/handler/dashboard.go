package handler

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
)

// DashboardHandler aggregates the data the home screen shows in a single
// round trip instead of having the client fan out a request per panel.
type DashboardHandler struct {
	appointments *store.AppointmentStore
	events       *store.EventStore
	notes        *store.NoteStore
	photos       *store.PhotoStore
	groups       *store.GroupStore
	logger       *slog.Logger
}

func NewDashboardHandler(as *store.AppointmentStore, es *store.EventStore, ns *store.NoteStore, ps *store.PhotoStore, gs *store.GroupStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{appointments: as, events: es, notes: ns, photos: ps, groups: gs, logger: logger}
}

type dashboardSummary struct {
	UpcomingAppointments []model.Appointment `json:"upcoming_appointments"`
	UpcomingEvents       []model.Event       `json:"upcoming_events"`
	HighPriorityNotes    []model.Note        `json:"high_priority_notes"`
	RecentPhotos         []model.Photo       `json:"recent_photos"`
	MemberCount          int                 `json:"member_count"`
}

// Summary returns the next appointments and events, urgent notes, and the
// latest photos for a group. The store queries run concurrently.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	var summary dashboardSummary

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		appts, err := h.appointments.ListUpcoming(groupID, now, 5)
		summary.UpcomingAppointments = appts
		return err
	})
	g.Go(func() error {
		events, err := h.events.ListUpcoming(groupID, now, 5)
		summary.UpcomingEvents = events
		return err
	})
	g.Go(func() error {
		notes, err := h.notes.ListByPriority(groupID, model.PriorityHigh)
		summary.HighPriorityNotes = notes
		return err
	})
	g.Go(func() error {
		photos, err := h.photos.ListRecent(groupID, 8)
		summary.RecentPhotos = photos
		return err
	})
	g.Go(func() error {
		count, err := h.groups.CountMembers(groupID)
		summary.MemberCount = count
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if summary.UpcomingAppointments == nil {
		summary.UpcomingAppointments = []model.Appointment{}
	}
	if summary.UpcomingEvents == nil {
		summary.UpcomingEvents = []model.Event{}
	}
	if summary.HighPriorityNotes == nil {
		summary.HighPriorityNotes = []model.Note{}
	}
	if summary.RecentPhotos == nil {
		summary.RecentPhotos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, summary)
}

type dashboardStats struct {
	Appointments int `json:"appointments"`
	Events       int `json:"events"`
	Notes        int `json:"notes"`
	Photos       int `json:"photos"`
	Members      int `json:"members"`
}

// Stats returns per-entity counts for a group.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var stats dashboardStats

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		appts, err := h.appointments.ListByGroup(groupID)
		stats.Appointments = len(appts)
		return err
	})
	g.Go(func() error {
		events, err := h.events.ListByGroup(groupID)
		stats.Events = len(events)
		return err
	})
	g.Go(func() error {
		notes, err := h.notes.ListByGroup(groupID)
		stats.Notes = len(notes)
		return err
	})
	g.Go(func() error {
		count, err := h.photos.CountByGroup(groupID)
		stats.Photos = count
		return err
	})
	g.Go(func() error {
		count, err := h.groups.CountMembers(groupID)
		stats.Members = count
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

type dashboardToday struct {
	Date         string              `json:"date"`
	Appointments []model.Appointment `json:"appointments"`
	Events       []model.Event       `json:"events"`
}

// Today returns the appointments and events scheduled for the current day.
func (h *DashboardHandler) Today(w http.ResponseWriter, r *http.Request) {
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
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	out := dashboardToday{Date: today.Format("2006-01-02")}

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		appts, err := h.appointments.ListByDate(groupID, today)
		out.Appointments = appts
		return err
	})
	g.Go(func() error {
		events, err := h.events.ListByDateRange(groupID, today, tomorrow)
		out.Events = events
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if out.Appointments == nil {
		out.Appointments = []model.Appointment{}
	}
	if out.Events == nil {
		out.Events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, out)
}

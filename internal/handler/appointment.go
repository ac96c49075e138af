package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/websocket"
)

type AppointmentHandler struct {
	appointments *store.AppointmentStore
	groups       *store.GroupStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewAppointmentHandler(as *store.AppointmentStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: as, groups: gs, hub: hub, logger: logger}
}

type appointmentRequest struct {
	GroupID  int64  `json:"groupId"`
	Title    string `json:"title"`
	Doctor   string `json:"doctor"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

func (req *appointmentRequest) validate() (time.Time, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return time.Time{}, apperr.InvalidArgument("title is required")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return time.Time{}, apperr.InvalidArgument("date must be a YYYY-MM-DD date")
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			return time.Time{}, apperr.InvalidArgument("time must be HH:MM")
		}
	}
	return date, nil
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	date, err := req.validate()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID := auth.UserID(r.Context())
	if err := requireMember(h.groups, req.GroupID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	appt, err := h.appointments.Create(req.GroupID, req.Title, req.Doctor, req.Location, date, req.Time, req.Notes, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(req.GroupID, websocket.NewMessage("appointment", "created", appt.ID, nil))
	writeJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	appts, err := h.appointments.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := limitQuery(r, 10, 100)
	appts, err := h.appointments.ListUpcoming(groupID, time.Now(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := dateQuery(r, "date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	appts, err := h.appointments.ListByDate(groupID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) ByDoctor(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	doctor := strings.TrimSpace(r.URL.Query().Get("doctor"))
	if doctor == "" {
		writeError(w, h.logger, apperr.InvalidArgument("doctor query parameter is required"))
		return
	}

	appts, err := h.appointments.ListByDoctor(groupID, doctor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// load fetches an appointment and checks the caller can touch it.
func (h *AppointmentHandler) load(r *http.Request) (*model.Appointment, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	appt, err := h.appointments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, apperr.NotFound("appointment not found")
	}
	if err := requireMember(h.groups, appt.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return appt, nil
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	date, err := req.validate()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	appt, err := h.appointments.Update(existing.ID, req.Title, req.Doctor, req.Location, date, req.Time, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("appointment", "updated", appt.ID, nil))
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.appointments.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("appointment", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

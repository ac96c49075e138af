package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/websocket"
)

type EventHandler struct {
	events *store.EventStore
	groups *store.GroupStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewEventHandler(es *store.EventStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: es, groups: gs, hub: hub, logger: logger}
}

var validEventTypes = map[string]bool{
	model.EventTypeBirthday: true,
	model.EventTypeParty:    true,
	model.EventTypeMeeting:  true,
	model.EventTypeOther:    true,
}

type eventRequest struct {
	GroupID     int64  `json:"groupId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

func (req *eventRequest) validate() (time.Time, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return time.Time{}, apperr.InvalidArgument("title is required")
	}
	if req.Type == "" {
		req.Type = model.EventTypeOther
	}
	if !validEventTypes[req.Type] {
		return time.Time{}, apperr.InvalidArgument("type must be birthday, party, meeting, or other")
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

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
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

	event, err := h.events.Create(req.GroupID, req.Title, req.Description, req.Type, date, req.Time, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(req.GroupID, websocket.NewMessage("event", "created", event.ID, nil))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	events, err := h.events.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
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
	events, err := h.events.ListUpcoming(groupID, time.Now(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) ByType(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	eventType := r.URL.Query().Get("type")
	if !validEventTypes[eventType] {
		writeError(w, h.logger, apperr.InvalidArgument("type must be birthday, party, meeting, or other"))
		return
	}

	events, err := h.events.ListByType(groupID, eventType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Birthdays lists birthday events falling in a month, defaulting to the
// current one.
func (h *EventHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	month := time.Now().Month()
	if raw := r.URL.Query().Get("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			writeError(w, h.logger, apperr.InvalidArgument("month must be 1-12"))
			return
		}
		month = time.Month(n)
	}

	events, err := h.events.ListBirthdays(groupID, month)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) load(r *http.Request) (*model.Event, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	if err := requireMember(h.groups, event.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return event, nil
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	date, err := req.validate()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, err := h.events.Update(existing.ID, req.Title, req.Description, req.Type, date, req.Time)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("event", "updated", event.ID, nil))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.events.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("event", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

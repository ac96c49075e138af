package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/websocket"
)

type NoteHandler struct {
	notes  *store.NoteStore
	groups *store.GroupStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: ns, groups: gs, hub: hub, logger: logger}
}

var validPriorities = map[string]bool{
	model.PriorityHigh:   true,
	model.PriorityNormal: true,
	model.PriorityLow:    true,
}

type noteRequest struct {
	GroupID  int64  `json:"groupId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

func (req *noteRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return apperr.InvalidArgument("title is required")
	}
	if req.Priority == "" {
		req.Priority = model.PriorityNormal
	}
	if !validPriorities[req.Priority] {
		return apperr.InvalidArgument("priority must be high, normal, or low")
	}
	return nil
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID := auth.UserID(r.Context())
	if err := requireMember(h.groups, req.GroupID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Create(req.GroupID, req.Title, req.Content, req.Priority, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(req.GroupID, websocket.NewMessage("note", "created", note.ID, nil))
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	notes, err := h.notes.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) ByPriority(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	priority := r.URL.Query().Get("priority")
	if !validPriorities[priority] {
		writeError(w, h.logger, apperr.InvalidArgument("priority must be high, normal, or low"))
		return
	}

	notes, err := h.notes.ListByPriority(groupID, priority)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// HighPriority is a shortcut the dashboard uses for the urgent-notes panel.
func (h *NoteHandler) HighPriority(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	notes, err := h.notes.ListByPriority(groupID, model.PriorityHigh)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, h.logger, apperr.InvalidArgument("q query parameter is required"))
		return
	}

	notes, err := h.notes.Search(groupID, query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) load(r *http.Request) (*model.Note, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	note, err := h.notes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperr.NotFound("note not found")
	}
	if err := requireMember(h.groups, note.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return note, nil
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Update(existing.ID, req.Title, req.Content, req.Priority)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("note", "updated", note.ID, nil))
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.notes.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("note", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

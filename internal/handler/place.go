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

type PlaceHandler struct {
	places *store.PlaceStore
	groups *store.GroupStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPlaceHandler(ps *store.PlaceStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{places: ps, groups: gs, hub: hub, logger: logger}
}

type placeRequest struct {
	GroupID int64  `json:"groupId"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (req *placeRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.InvalidArgument("name is required")
	}
	req.Type = strings.TrimSpace(strings.ToLower(req.Type))
	return nil
}

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
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

	place, err := h.places.Create(req.GroupID, req.Name, req.Type, req.Address, req.Phone, req.Notes, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(req.GroupID, websocket.NewMessage("place", "created", place.ID, nil))
	writeJSON(w, http.StatusCreated, place)
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	places, err := h.places.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if places == nil {
		places = []model.Place{}
	}
	writeJSON(w, http.StatusOK, places)
}

func (h *PlaceHandler) ByType(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	placeType := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("type")))
	if placeType == "" {
		writeError(w, h.logger, apperr.InvalidArgument("type query parameter is required"))
		return
	}

	places, err := h.places.ListByType(groupID, placeType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if places == nil {
		places = []model.Place{}
	}
	writeJSON(w, http.StatusOK, places)
}

func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
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

	places, err := h.places.Search(groupID, query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if places == nil {
		places = []model.Place{}
	}
	writeJSON(w, http.StatusOK, places)
}

// Types lists the distinct place types a group uses, for filter dropdowns.
func (h *PlaceHandler) Types(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	types, err := h.places.ListTypes(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *PlaceHandler) load(r *http.Request) (*model.Place, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	place, err := h.places.GetByID(id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, apperr.NotFound("place not found")
	}
	if err := requireMember(h.groups, place.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return place, nil
}

func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	place, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	place, err := h.places.Update(existing.ID, req.Name, req.Type, req.Address, req.Phone, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("place", "updated", place.ID, nil))
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.places.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("place", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

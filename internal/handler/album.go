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

type AlbumHandler struct {
	albums *store.AlbumStore
	photos *store.PhotoStore
	groups *store.GroupStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAlbumHandler(as *store.AlbumStore, ps *store.PhotoStore, gs *store.GroupStore, hub *websocket.Hub, logger *slog.Logger) *AlbumHandler {
	return &AlbumHandler{albums: as, photos: ps, groups: gs, hub: hub, logger: logger}
}

type albumRequest struct {
	GroupID     int64  `json:"groupId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}

	userID := auth.UserID(r.Context())
	if err := requireMember(h.groups, req.GroupID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	album, err := h.albums.Create(req.GroupID, req.Name, req.Description, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(req.GroupID, websocket.NewMessage("album", "created", album.ID, nil))
	writeJSON(w, http.StatusCreated, album)
}

func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	albums, err := h.albums.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if albums == nil {
		albums = []model.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *AlbumHandler) Recent(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := limitQuery(r, 5, 50)
	albums, err := h.albums.ListRecent(groupID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if albums == nil {
		albums = []model.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *AlbumHandler) Search(w http.ResponseWriter, r *http.Request) {
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

	albums, err := h.albums.Search(groupID, query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if albums == nil {
		albums = []model.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *AlbumHandler) load(r *http.Request) (*model.Album, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	album, err := h.albums.GetByID(id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, apperr.NotFound("album not found")
	}
	if err := requireMember(h.groups, album.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return album, nil
}

// Get returns an album along with its photos.
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	album, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	photos, err := h.photos.ListByAlbum(album.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, struct {
		*model.Album
		Photos []model.Photo `json:"photos"`
	}{album, photos})
}

func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}

	album, err := h.albums.Update(existing.ID, req.Name, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("album", "updated", album.ID, nil))
	writeJSON(w, http.StatusOK, album)
}

func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.albums.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("album", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

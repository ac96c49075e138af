package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/storage"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/websocket"
)

// maxPhotoBytes caps a single upload at 10 MiB.
const maxPhotoBytes = 10 << 20

type PhotoHandler struct {
	photos  *store.PhotoStore
	albums  *store.AlbumStore
	groups  *store.GroupStore
	objects *storage.PhotoStorage
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewPhotoHandler(ps *store.PhotoStore, as *store.AlbumStore, gs *store.GroupStore, objects *storage.PhotoStorage, hub *websocket.Hub, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{photos: ps, albums: as, groups: gs, objects: objects, hub: hub, logger: logger}
}

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload accepts a multipart form with a "photo" file plus groupId and
// optional albumId and caption fields.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		writeError(w, h.logger, apperr.New(apperr.KindInternal, "photo storage is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("photo exceeds the 10MB limit or the form is malformed"))
		return
	}

	groupID, err := strconv.ParseInt(r.FormValue("groupId"), 10, 64)
	if err != nil || groupID <= 0 {
		writeError(w, h.logger, apperr.InvalidArgument("groupId form field is required"))
		return
	}

	userID := auth.UserID(r.Context())
	if err := requireMember(h.groups, groupID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var albumID *int64
	if raw := r.FormValue("albumId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, h.logger, apperr.InvalidArgument("albumId must be a positive integer"))
			return
		}
		album, err := h.albums.GetByID(id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if album == nil || album.GroupID != groupID {
			writeError(w, h.logger, apperr.NotFound("album not found in this group"))
			return
		}
		albumID = &id
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedPhotoTypes[contentType] {
		writeError(w, h.logger, apperr.InvalidArgument("photo must be a JPEG, PNG, GIF, or WebP image"))
		return
	}

	key, url, err := h.objects.Upload(r.Context(), groupID, header.Filename, contentType, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	photo, err := h.photos.Create(groupID, albumID, key, url, caption, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(groupID, websocket.NewMessage("photo", "created", photo.ID, nil))
	writeJSON(w, http.StatusCreated, photo)
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	photos, err := h.photos.ListByGroup(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *PhotoHandler) WithoutAlbum(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	photos, err := h.photos.ListWithoutAlbum(groupID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *PhotoHandler) Recent(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupIDQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := requireMember(h.groups, groupID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := limitQuery(r, 12, 100)
	photos, err := h.photos.ListRecent(groupID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *PhotoHandler) load(r *http.Request) (*model.Photo, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.InvalidArgument("invalid id")
	}
	photo, err := h.photos.GetByID(id)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, apperr.NotFound("photo not found")
	}
	if err := requireMember(h.groups, photo.GroupID, auth.UserID(r.Context())); err != nil {
		return nil, err
	}
	return photo, nil
}

func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

type movePhotoRequest struct {
	AlbumID *int64 `json:"albumId"`
}

// Move assigns the photo to an album, or removes it from one when albumId
// is null.
func (h *PhotoHandler) Move(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req movePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	if req.AlbumID != nil {
		album, err := h.albums.GetByID(*req.AlbumID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if album == nil || album.GroupID != existing.GroupID {
			writeError(w, h.logger, apperr.NotFound("album not found in this group"))
			return
		}
	}

	photo, err := h.photos.MoveToAlbum(existing.ID, req.AlbumID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("photo", "moved", photo.ID, nil))
	writeJSON(w, http.StatusOK, photo)
}

type photoUpdateRequest struct {
	Caption string `json:"caption"`
}

func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req photoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	photo, err := h.photos.Update(existing.ID, strings.TrimSpace(req.Caption))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("photo", "updated", photo.ID, nil))
	writeJSON(w, http.StatusOK, photo)
}

// Delete removes the photo row and best-effort deletes the stored object.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.photos.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if h.objects != nil {
		if err := h.objects.Delete(r.Context(), existing.ObjectKey); err != nil {
			h.logger.Warn("delete photo object", "key", existing.ObjectKey, "error", err)
		}
	}

	h.hub.BroadcastToGroup(existing.GroupID, websocket.NewMessage("photo", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

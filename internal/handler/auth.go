package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/token"
)

type AuthHandler struct {
	users  *store.UserStore
	tokens *token.Manager
	logger *slog.Logger
}

func NewAuthHandler(users *store.UserStore, tokens *token.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, h.logger, apperr.InvalidArgument("password must be at least 8 characters"))
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if existing != nil {
		writeError(w, h.logger, apperr.Conflict("email is already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Create(req.Name, req.Email, string(hash))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	signed, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: signed, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.users.GetByEmail(email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil {
		writeError(w, h.logger, apperr.Unauthorized("invalid email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, h.logger, apperr.Unauthorized("invalid email or password"))
		return
	}

	signed, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: signed, User: user})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil {
		writeError(w, h.logger, apperr.NotFound("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	current, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if current == nil {
		writeError(w, h.logger, apperr.NotFound("user not found"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		email = current.Email
	} else if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("a valid email is required"))
		return
	}
	if email != current.Email {
		taken, err := h.users.GetByEmail(email)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if taken != nil {
			writeError(w, h.logger, apperr.Conflict("email is already registered"))
			return
		}
	}

	user, err := h.users.Update(current.ID, req.Name, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

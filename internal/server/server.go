package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pablodelgado26/family-organizer/internal/config"
	"github.com/pablodelgado26/family-organizer/internal/handler"
	"github.com/pablodelgado26/family-organizer/internal/invite"
	"github.com/pablodelgado26/family-organizer/internal/metrics"
	"github.com/pablodelgado26/family-organizer/internal/middleware"
	"github.com/pablodelgado26/family-organizer/internal/storage"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/token"
	ws "github.com/pablodelgado26/family-organizer/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	groups       *store.GroupStore
	tokens       *token.Manager
	authH        *handler.AuthHandler
	groupH       *handler.GroupHandler
	appointmentH *handler.AppointmentHandler
	eventH       *handler.EventHandler
	calendarH    *handler.CalendarHandler
	noteH        *handler.NoteHandler
	placeH       *handler.PlaceHandler
	albumH       *handler.AlbumHandler
	photoH       *handler.PhotoHandler
	dashboardH   *handler.DashboardHandler
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	groupStore := store.NewGroupStore(db)
	appointmentStore := store.NewAppointmentStore(db)
	eventStore := store.NewEventStore(db)
	noteStore := store.NewNoteStore(db)
	placeStore := store.NewPlaceStore(db)
	albumStore := store.NewAlbumStore(db)
	photoStore := store.NewPhotoStore(db)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	invites := invite.NewService(groupStore, logger.With("component", "invite"))

	var objects *storage.PhotoStorage
	if cfg.S3.Enabled() {
		objects = storage.New(cfg.S3, logger.With("component", "storage"))
	} else {
		logger.Warn("photo storage disabled, set FAMILY_ORGANIZER_S3_BUCKET to enable uploads")
	}

	return &Server{
		db:           db,
		hub:          hub,
		groups:       groupStore,
		tokens:       tokens,
		authH:        handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		groupH:       handler.NewGroupHandler(groupStore, invites, hub, logger.With("component", "group")),
		appointmentH: handler.NewAppointmentHandler(appointmentStore, groupStore, hub, logger.With("component", "appointment")),
		eventH:       handler.NewEventHandler(eventStore, groupStore, hub, logger.With("component", "event")),
		calendarH:    handler.NewCalendarHandler(eventStore, groupStore, logger.With("component", "calendar")),
		noteH:        handler.NewNoteHandler(noteStore, groupStore, hub, logger.With("component", "note")),
		placeH:       handler.NewPlaceHandler(placeStore, groupStore, hub, logger.With("component", "place")),
		albumH:       handler.NewAlbumHandler(albumStore, photoStore, groupStore, hub, logger.With("component", "album")),
		photoH:       handler.NewPhotoHandler(photoStore, albumStore, groupStore, objects, hub, logger.With("component", "photo")),
		dashboardH:   handler.NewDashboardHandler(appointmentStore, eventStore, noteStore, photoStore, groupStore, logger.With("component", "dashboard")),
		rateLimiter:  middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst),
		logger:       logger,
	}
}

// RateLimiter returns the auth rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler())

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(metrics.Instrument(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Profile
	mux.HandleFunc("GET /api/auth/profile", s.authH.Profile)
	mux.HandleFunc("PUT /api/auth/profile", s.authH.UpdateProfile)

	// Family group routes
	mux.HandleFunc("GET /api/family-groups", s.groupH.List)
	mux.HandleFunc("POST /api/family-groups", s.groupH.Create)
	mux.HandleFunc("GET /api/family-groups/{id}", s.groupH.Get)
	mux.HandleFunc("PUT /api/family-groups/{id}", s.groupH.Update)
	mux.HandleFunc("DELETE /api/family-groups/{id}", s.groupH.Delete)
	mux.HandleFunc("GET /api/family-groups/{id}/members", s.groupH.Members)
	mux.HandleFunc("POST /api/family-groups/join", s.groupH.Join)
	mux.HandleFunc("POST /api/family-groups/join-temp", s.groupH.JoinTemp)
	mux.HandleFunc("POST /api/family-groups/{id}/temp-invite", s.groupH.TempInvite)
	mux.HandleFunc("POST /api/family-groups/{id}/regenerate-invite", s.groupH.RegenerateInvite)
	mux.HandleFunc("POST /api/family-groups/{id}/leave", s.groupH.Leave)

	// Appointment routes
	mux.HandleFunc("POST /api/appointments", s.appointmentH.Create)
	mux.HandleFunc("GET /api/appointments", s.appointmentH.List)
	mux.HandleFunc("GET /api/appointments/upcoming", s.appointmentH.Upcoming)
	mux.HandleFunc("GET /api/appointments/by-date", s.appointmentH.ByDate)
	mux.HandleFunc("GET /api/appointments/by-doctor", s.appointmentH.ByDoctor)
	mux.HandleFunc("GET /api/appointments/{id}", s.appointmentH.Get)
	mux.HandleFunc("PUT /api/appointments/{id}", s.appointmentH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.appointmentH.Delete)

	// Event routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/upcoming", s.eventH.Upcoming)
	mux.HandleFunc("GET /api/events/by-type", s.eventH.ByType)
	mux.HandleFunc("GET /api/events/birthdays", s.eventH.Birthdays)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Calendar grid
	mux.HandleFunc("GET /api/calendar", s.calendarH.MonthGrid)

	// Note routes
	mux.HandleFunc("POST /api/notes", s.noteH.Create)
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("GET /api/notes/by-priority", s.noteH.ByPriority)
	mux.HandleFunc("GET /api/notes/high-priority", s.noteH.HighPriority)
	mux.HandleFunc("GET /api/notes/search", s.noteH.Search)
	mux.HandleFunc("GET /api/notes/{id}", s.noteH.Get)
	mux.HandleFunc("PUT /api/notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)

	// Place routes
	mux.HandleFunc("POST /api/places", s.placeH.Create)
	mux.HandleFunc("GET /api/places", s.placeH.List)
	mux.HandleFunc("GET /api/places/by-type", s.placeH.ByType)
	mux.HandleFunc("GET /api/places/search", s.placeH.Search)
	mux.HandleFunc("GET /api/places/types", s.placeH.Types)
	mux.HandleFunc("GET /api/places/{id}", s.placeH.Get)
	mux.HandleFunc("PUT /api/places/{id}", s.placeH.Update)
	mux.HandleFunc("DELETE /api/places/{id}", s.placeH.Delete)

	// Album routes
	mux.HandleFunc("POST /api/albums", s.albumH.Create)
	mux.HandleFunc("GET /api/albums", s.albumH.List)
	mux.HandleFunc("GET /api/albums/recent", s.albumH.Recent)
	mux.HandleFunc("GET /api/albums/search", s.albumH.Search)
	mux.HandleFunc("GET /api/albums/{id}", s.albumH.Get)
	mux.HandleFunc("PUT /api/albums/{id}", s.albumH.Update)
	mux.HandleFunc("DELETE /api/albums/{id}", s.albumH.Delete)

	// Photo routes
	mux.HandleFunc("POST /api/photos", s.photoH.Upload)
	mux.HandleFunc("GET /api/photos", s.photoH.List)
	mux.HandleFunc("GET /api/photos/without-album", s.photoH.WithoutAlbum)
	mux.HandleFunc("GET /api/photos/recent", s.photoH.Recent)
	mux.HandleFunc("GET /api/photos/{id}", s.photoH.Get)
	mux.HandleFunc("PUT /api/photos/{id}", s.photoH.Update)
	mux.HandleFunc("PUT /api/photos/{id}/album", s.photoH.Move)
	mux.HandleFunc("DELETE /api/photos/{id}", s.photoH.Delete)

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/summary", s.dashboardH.Summary)
	mux.HandleFunc("GET /api/dashboard/today", s.dashboardH.Today)
	mux.HandleFunc("GET /api/dashboard/stats", s.dashboardH.Stats)

	// WebSocket
	isMember := func(groupID, userID int64) (bool, error) {
		m, err := s.groups.GetMember(groupID, userID)
		if err != nil {
			return false, err
		}
		return m != nil, nil
	}
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, isMember))
}

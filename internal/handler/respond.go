// Package handler implements the JSON API endpoints.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and a JSON body. Internal
// errors are logged and masked.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// groupIDQuery reads the groupId query parameter every group-scoped list
// endpoint takes.
func groupIDQuery(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get("groupId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument("groupId query parameter is required")
	}
	return id, nil
}

// limitQuery reads an optional limit parameter, defaulting and capping it.
func limitQuery(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// dateQuery parses a required YYYY-MM-DD query parameter.
func dateQuery(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.InvalidArgument("%s must be a YYYY-MM-DD date", name)
	}
	return d, nil
}

// requireMember checks that the user belongs to the group.
func requireMember(groups *store.GroupStore, groupID, userID int64) error {
	m, err := groups.GetMember(groupID, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "check membership")
	}
	if m == nil {
		return apperr.Forbidden("not a member of this group")
	}
	return nil
}

// requireAdmin checks that the user is an admin of the group.
func requireAdmin(groups *store.GroupStore, groupID, userID int64) error {
	m, err := groups.GetMember(groupID, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "check membership")
	}
	if m == nil {
		return apperr.Forbidden("not a member of this group")
	}
	if m.Role != model.RoleAdmin {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

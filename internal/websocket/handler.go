package websocket

import (
	"net/http"
	"strconv"

	ws "github.com/coder/websocket"

	"github.com/pablodelgado26/family-organizer/internal/auth"
)

// MembershipChecker reports whether a user belongs to a group.
type MembershipChecker func(groupID, userID int64) (bool, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and subscribes them to the group named in the group_id query
// parameter. The caller must already be authenticated; membership is checked
// before the upgrade.
func HandleWebSocket(hub *Hub, isMember MembershipChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := strconv.ParseInt(r.URL.Query().Get("group_id"), 10, 64)
		if err != nil || groupID <= 0 {
			http.Error(w, "group_id is required", http.StatusBadRequest)
			return
		}

		userID := auth.UserID(r.Context())
		ok, err := isMember(groupID, userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "not a member of this group", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Front end origin varies between deployments
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, groupID)
		client.Run(r.Context())
	}
}

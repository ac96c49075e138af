package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/invite"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/websocket"
)

type GroupHandler struct {
	groups  *store.GroupStore
	invites *invite.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewGroupHandler(groups *store.GroupStore, invites *invite.Service, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, invites: invites, hub: hub, logger: logger}
}

func (h *GroupHandler) broadcast(groupID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToGroup(groupID, msg)
	}
}

// groupView is a group as returned to its members. Invite codes are only
// included for admins.
type groupView struct {
	*model.FamilyGroup
	Role        string               `json:"role,omitempty"`
	MemberCount int                  `json:"memberCount"`
	Members     []model.MemberDetail `json:"members,omitempty"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroupsForUser(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if groups == nil {
		groups = []model.GroupWithRole{}
	}
	for i := range groups {
		if groups[i].Role != model.RoleAdmin {
			groups[i].InviteCode = ""
			groups[i].TempCode = nil
			groups[i].TempExpiresAt = nil
		}
	}
	writeJSON(w, http.StatusOK, groups)
}

type groupRequest struct {
	Name string `json:"name"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}

	code, err := h.invites.UniquePermanentCode()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	group, err := h.groups.Create(req.Name, code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID := auth.UserID(r.Context())
	if _, err := h.groups.AddMember(group.ID, userID, model.RoleAdmin); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("group created", "group_id", group.ID, "user_id", userID)
	writeJSON(w, http.StatusCreated, groupView{FamilyGroup: group, Role: model.RoleAdmin, MemberCount: 1})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}

	userID := auth.UserID(r.Context())
	member, err := h.groups.GetMember(id, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil {
		writeError(w, h.logger, apperr.Forbidden("not a member of this group"))
		return
	}

	group, err := h.groups.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if group == nil {
		writeError(w, h.logger, apperr.NotFound("group not found"))
		return
	}

	members, err := h.groups.ListMembers(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if member.Role != model.RoleAdmin {
		group.InviteCode = ""
		group.TempCode = nil
		group.TempExpiresAt = nil
	}
	writeJSON(w, http.StatusOK, groupView{
		FamilyGroup: group,
		Role:        member.Role,
		MemberCount: len(members),
		Members:     members,
	})
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}
	userID := auth.UserID(r.Context())
	if err := requireAdmin(h.groups, id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.InvalidArgument("name is required"))
		return
	}

	group, err := h.groups.Update(id, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(id, websocket.NewMessage("group", "updated", id, nil))
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}
	userID := auth.UserID(r.Context())
	if err := requireAdmin(h.groups, id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.groups.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("group deleted", "group_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}
	if err := requireMember(h.groups, id, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	members, err := h.groups.ListMembers(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.MemberDetail{}
	}
	writeJSON(w, http.StatusOK, members)
}

type joinRequest struct {
	InviteCode string `json:"inviteCode"`
}

// Join adds the caller to a group via its permanent invite code.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	userID := auth.UserID(r.Context())
	group, err := h.invites.JoinWithPermanentCode(userID, req.InviteCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(group.ID, websocket.NewMessage("member", "joined", userID, nil))
	group.InviteCode = ""
	group.TempCode = nil
	group.TempExpiresAt = nil
	writeJSON(w, http.StatusOK, group)
}

// JoinTemp adds the caller to a group via a temporary invite code.
func (h *GroupHandler) JoinTemp(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid JSON"))
		return
	}

	userID := auth.UserID(r.Context())
	group, err := h.invites.JoinWithTemporaryCode(userID, req.InviteCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(group.ID, websocket.NewMessage("member", "joined", userID, nil))
	group.InviteCode = ""
	group.TempCode = nil
	group.TempExpiresAt = nil
	writeJSON(w, http.StatusOK, group)
}

// TempInvite issues a fresh temporary code for the group.
func (h *GroupHandler) TempInvite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}

	inv, err := h.invites.GenerateTempCode(id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// RegenerateInvite rotates the group's permanent invite code.
func (h *GroupHandler) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}

	code, err := h.invites.RotatePermanentCode(id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"inviteCode": code})
}

// Leave removes the caller from the group. The last admin cannot leave
// while other members remain.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.InvalidArgument("invalid id"))
		return
	}

	userID := auth.UserID(r.Context())
	member, err := h.groups.GetMember(id, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil {
		writeError(w, h.logger, apperr.Forbidden("not a member of this group"))
		return
	}

	if member.Role == model.RoleAdmin {
		members, err := h.groups.ListMembers(id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		admins := 0
		for _, m := range members {
			if m.Role == model.RoleAdmin {
				admins++
			}
		}
		if admins == 1 && len(members) > 1 {
			writeError(w, h.logger, apperr.Conflict("promote another admin before leaving"))
			return
		}
	}

	if err := h.groups.RemoveMember(id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(id, websocket.NewMessage("member", "left", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}

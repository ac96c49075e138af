package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/pablodelgado26/family-organizer/internal/invite"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
)

type groupFixture struct {
	handler *GroupHandler
	groups  *store.GroupStore
	users   *store.UserStore
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	db := testDB(t)
	groups := store.NewGroupStore(db)
	users := store.NewUserStore(db)
	invites := invite.NewService(groups, testLogger())
	return &groupFixture{
		handler: NewGroupHandler(groups, invites, nil, testLogger()),
		groups:  groups,
		users:   users,
	}
}

func (f *groupFixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.users.Create(name, name+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *groupFixture) group(t *testing.T, name string, adminID int64) *model.FamilyGroup {
	t.Helper()
	g, err := f.groups.Create(name, "CODE"+strconv.FormatInt(adminID, 10))
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := f.groups.AddMember(g.ID, adminID, model.RoleAdmin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	return g
}

func idRequest(method, path string, id int64) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	r.SetPathValue("id", strconv.FormatInt(id, 10))
	return r
}

func TestCreateGroup(t *testing.T) {
	f := newGroupFixture(t)
	u := f.user(t, "ana")

	w := httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/api/family-groups", jsonBody(t, map[string]string{"name": "Silva Family"})), u.ID)
	f.handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		InviteCode string `json:"invite_code"`
		Role       string `json:"role"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Silva Family" {
		t.Errorf("name = %q", got.Name)
	}
	if len(got.InviteCode) != invite.PermanentCodeLength {
		t.Errorf("invite code %q, want %d chars", got.InviteCode, invite.PermanentCodeLength)
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", got.Role)
	}

	m, err := f.groups.GetMember(got.ID, u.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil || m.Role != model.RoleAdmin {
		t.Error("creator should be an admin member")
	}
}

func TestGetGroupHidesCodesFromMembers(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	member := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)
	if _, err := f.groups.AddMember(g.ID, member.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	w := httptest.NewRecorder()
	f.handler.Get(w, authed(idRequest("GET", "/api/family-groups/1", g.ID), admin.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("admin get status = %d", w.Code)
	}
	var adminView struct {
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&adminView); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if adminView.InviteCode == "" {
		t.Error("admin should see the invite code")
	}

	w = httptest.NewRecorder()
	f.handler.Get(w, authed(idRequest("GET", "/api/family-groups/1", g.ID), member.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("member get status = %d", w.Code)
	}
	var memberView struct {
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&memberView); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if memberView.InviteCode != "" {
		t.Errorf("member should not see the invite code, got %q", memberView.InviteCode)
	}
}

func TestGetGroupRequiresMembership(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	outsider := f.user(t, "zoe")
	g := f.group(t, "Silva", admin.ID)

	w := httptest.NewRecorder()
	f.handler.Get(w, authed(idRequest("GET", "/api/family-groups/1", g.ID), outsider.ID))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestJoinWithPermanentCode(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	joiner := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)

	w := httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/api/family-groups/join", jsonBody(t, map[string]string{
		"inviteCode": g.InviteCode,
	})), joiner.ID)
	f.handler.Join(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.InviteCode != "" {
		t.Error("join response should not expose the invite code")
	}

	m, err := f.groups.GetMember(g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil || m.Role != model.RoleMember {
		t.Error("joiner should be a regular member")
	}
}

func TestTempInviteAndJoin(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	joiner := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)

	w := httptest.NewRecorder()
	f.handler.TempInvite(w, authed(idRequest("POST", "/api/family-groups/1/temp-invite", g.ID), admin.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("temp invite status = %d: %s", w.Code, w.Body.String())
	}
	var inv struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(inv.Code) != invite.TempCodeLength {
		t.Fatalf("temp code %q, want %d chars", inv.Code, invite.TempCodeLength)
	}

	w = httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/api/family-groups/join-temp", jsonBody(t, map[string]string{
		"inviteCode": inv.Code,
	})), joiner.ID)
	f.handler.JoinTemp(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("join-temp status = %d: %s", w.Code, w.Body.String())
	}

	m, err := f.groups.GetMember(g.ID, joiner.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil {
		t.Error("joiner should be a member after temp join")
	}
}

func TestTempInviteRequiresAdmin(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	member := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)
	if _, err := f.groups.AddMember(g.ID, member.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	w := httptest.NewRecorder()
	f.handler.TempInvite(w, authed(idRequest("POST", "/api/family-groups/1/temp-invite", g.ID), member.ID))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRegenerateInvite(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	g := f.group(t, "Silva", admin.ID)

	w := httptest.NewRecorder()
	f.handler.RegenerateInvite(w, authed(idRequest("POST", "/api/family-groups/1/regenerate-invite", g.ID), admin.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.InviteCode == g.InviteCode {
		t.Error("invite code should have changed")
	}
	if len(got.InviteCode) != invite.PermanentCodeLength {
		t.Errorf("invite code %q, want %d chars", got.InviteCode, invite.PermanentCodeLength)
	}
}

func TestLeaveGroup(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	member := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)
	if _, err := f.groups.AddMember(g.ID, member.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	// The only admin cannot abandon a group that still has members.
	w := httptest.NewRecorder()
	f.handler.Leave(w, authed(idRequest("POST", "/api/family-groups/1/leave", g.ID), admin.ID))
	if w.Code != http.StatusConflict {
		t.Errorf("last admin leave status = %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	f.handler.Leave(w, authed(idRequest("POST", "/api/family-groups/1/leave", g.ID), member.ID))
	if w.Code != http.StatusNoContent {
		t.Errorf("member leave status = %d, want 204", w.Code)
	}

	m, err := f.groups.GetMember(g.ID, member.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m != nil {
		t.Error("member should be gone after leaving")
	}
}

func TestListGroupsStripsCodesForMembers(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.user(t, "ana")
	member := f.user(t, "bia")
	g := f.group(t, "Silva", admin.ID)
	if _, err := f.groups.AddMember(g.ID, member.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	w := httptest.NewRecorder()
	f.handler.List(w, authed(httptest.NewRequest("GET", "/api/family-groups", nil), member.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []struct {
		InviteCode string `json:"invite_code"`
		Role       string `json:"role"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].InviteCode != "" {
		t.Errorf("member list should not expose invite codes, got %q", got[0].InviteCode)
	}
}

package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/auth"
	"github.com/pablodelgado26/family-organizer/internal/database"
	"github.com/pablodelgado26/family-organizer/internal/store"
	"github.com/pablodelgado26/family-organizer/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// authed attaches a signed-in user to the request context, standing in for
// the auth middleware.
func authed(r *http.Request, userID int64) *http.Request {
	return r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID}))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return &buf
}

func newAuthHandler(t *testing.T) (*AuthHandler, *store.UserStore) {
	t.Helper()
	db := testDB(t)
	users := store.NewUserStore(db)
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthHandler(users, tokens, testLogger()), users
}

func TestRegister(t *testing.T) {
	h, _ := newAuthHandler(t)

	body := jsonBody(t, map[string]string{
		"name":     "Ana",
		"email":    "Ana@Example.com",
		"password": "correct horse",
	})
	w := httptest.NewRecorder()
	h.Register(w, httptest.NewRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token in the response")
	}
	if resp.User.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", resp.User.Email)
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.com", "password": "longenough"}},
		{"bad email", map[string]string{"name": "Ana", "email": "nope", "password": "longenough"}},
		{"short password", map[string]string{"name": "Ana", "email": "a@b.com", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Register(w, httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, tc.body)))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler(t)

	body := map[string]string{"name": "Ana", "email": "ana@example.com", "password": "longenough"}
	w := httptest.NewRecorder()
	h.Register(w, httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Register(w, httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, body)))
	if w.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", w.Code)
	}
}

func TestLogin(t *testing.T) {
	h, _ := newAuthHandler(t)

	reg := jsonBody(t, map[string]string{"name": "Ana", "email": "ana@example.com", "password": "longenough"})
	w := httptest.NewRecorder()
	h.Register(w, httptest.NewRequest("POST", "/api/auth/register", reg))
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "ANA@example.com",
		"password": "longenough",
	})))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "ana@example.com",
		"password": "wrong password",
	})))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, map[string]string{
		"email":    "nobody@example.com",
		"password": "longenough",
	})))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", w.Code)
	}
}

func TestProfile(t *testing.T) {
	h, users := newAuthHandler(t)
	u, err := users.Create("Ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := httptest.NewRecorder()
	h.Profile(w, authed(httptest.NewRequest("GET", "/api/auth/profile", nil), u.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Ana" {
		t.Errorf("name = %q, want Ana", got.Name)
	}
}

func TestUpdateProfile(t *testing.T) {
	h, users := newAuthHandler(t)
	u, err := users.Create("Ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create("Bia", "bia@example.com", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := httptest.NewRecorder()
	req := authed(httptest.NewRequest("PUT", "/api/auth/profile", jsonBody(t, map[string]string{
		"name": "Ana Maria",
	})), u.ID)
	h.UpdateProfile(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	updated, err := users.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.Name != "Ana Maria" {
		t.Errorf("name = %q, want Ana Maria", updated.Name)
	}
	if updated.Email != "ana@example.com" {
		t.Errorf("email changed to %q, want unchanged", updated.Email)
	}

	// Taking another user's email is a conflict.
	w = httptest.NewRecorder()
	req = authed(httptest.NewRequest("PUT", "/api/auth/profile", jsonBody(t, map[string]string{
		"name":  "Ana",
		"email": "bia@example.com",
	})), u.ID)
	h.UpdateProfile(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

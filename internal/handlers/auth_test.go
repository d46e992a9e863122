package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuth_Register(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := &Auth{DB: db, Sessions: sm}

	t.Run("creates account and session", func(t *testing.T) {
		body := strings.NewReader(`{"email":"new@test.com","firstName":"New","lastName":"User","password":"password123"}`)
		r := httptest.NewRequest("POST", "/register", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Register)).ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		var resp userView
		decodeBody(t, w, &resp)
		if resp.Email != "new@test.com" {
			t.Errorf("email = %q", resp.Email)
		}
		if len(w.Result().Cookies()) == 0 {
			t.Error("expected a session cookie")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := strings.NewReader(`{"email":"new@test.com","firstName":"Dup","lastName":"User","password":"password123"}`)
		r := httptest.NewRequest("POST", "/register", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Register)).ServeHTTP(w, r)

		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("short password", func(t *testing.T) {
		body := strings.NewReader(`{"email":"short@test.com","firstName":"S","lastName":"P","password":"short"}`)
		r := httptest.NewRequest("POST", "/register", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Register)).ServeHTTP(w, r)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/register", strings.NewReader("not json"))
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Register)).ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestAuth_Login(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := &Auth{DB: db, Sessions: sm}
	seedUser(t, db)

	t.Run("valid credentials", func(t *testing.T) {
		body := strings.NewReader(`{"email":"member@test.com","password":"password123"}`)
		r := httptest.NewRequest("POST", "/login", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Login)).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		if len(w.Result().Cookies()) == 0 {
			t.Error("expected a session cookie")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := strings.NewReader(`{"email":"member@test.com","password":"wrong"}`)
		r := httptest.NewRequest("POST", "/login", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Login)).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("unknown email gets same response", func(t *testing.T) {
		body := strings.NewReader(`{"email":"nobody@test.com","password":"password123"}`)
		r := httptest.NewRequest("POST", "/login", body)
		w := httptest.NewRecorder()
		sm.LoadAndSave(http.HandlerFunc(h.Login)).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestAuth_Logout(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := &Auth{DB: db, Sessions: sm}

	r := httptest.NewRequest("POST", "/logout", nil)
	w := httptest.NewRecorder()
	sm.LoadAndSave(http.HandlerFunc(h.Logout)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

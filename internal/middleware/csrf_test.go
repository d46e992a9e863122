package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCSRFProtect_GeneratesToken(t *testing.T) {
	sm := testSessionManager()

	var gotToken string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = CSRFTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := sm.LoadAndSave(CSRFProtect(sm, inner))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(gotToken) != 64 { // 32 bytes hex-encoded
		t.Errorf("expected 64-char token, got %d chars", len(gotToken))
	}
}

func TestCSRFProtect_RejectsMutationWithoutToken(t *testing.T) {
	sm := testSessionManager()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			var called bool
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			handler := sm.LoadAndSave(CSRFProtect(sm, inner))

			// GET to establish session with CSRF token.
			getRR := httptest.NewRecorder()
			handler.ServeHTTP(getRR, httptest.NewRequest("GET", "/", nil))
			cookies := getRR.Result().Cookies()
			called = false

			req := httptest.NewRequest(method, "/", nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if called {
				t.Errorf("handler should not be called for %s without token", method)
			}
			if rr.Code != http.StatusForbidden {
				t.Errorf("expected 403 for %s, got %d", method, rr.Code)
			}
		})
	}
}

func TestCSRFProtect_AcceptsMutationWithHeader(t *testing.T) {
	sm := testSessionManager()

	var called bool
	var gotToken string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotToken = CSRFTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := sm.LoadAndSave(CSRFProtect(sm, inner))

	// GET to establish session.
	getRR := httptest.NewRecorder()
	handler.ServeHTTP(getRR, httptest.NewRequest("GET", "/", nil))
	cookies := getRR.Result().Cookies()
	token := gotToken

	called = false
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("expected handler to be called with valid CSRF token")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestCSRFProtect_RejectsWrongToken(t *testing.T) {
	sm := testSessionManager()

	handler := sm.LoadAndSave(CSRFProtect(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Error("handler should not be called with a wrong token")
		}
		w.WriteHeader(http.StatusOK)
	})))

	getRR := httptest.NewRecorder()
	handler.ServeHTTP(getRR, httptest.NewRequest("GET", "/", nil))
	cookies := getRR.Result().Cookies()

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-CSRF-Token", "wrong-token-value")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rr.Code)
	}
}

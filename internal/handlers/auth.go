package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/planfit/planfit/internal/middleware"
	"github.com/planfit/planfit/internal/models"
)

// Auth handles registration, login, and logout.
type Auth struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
}

type userView struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func viewUser(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// Register creates a new account and logs it in.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	user, err := models.CreateUser(h.DB, req.Email, req.FirstName, req.LastName, req.Password)
	if err == models.ErrDuplicateEmail {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}
	if err != nil {
		writeModelError(w, err)
		return
	}

	// Rotate the session token on privilege change.
	if err := h.Sessions.RenewToken(r.Context()); err != nil {
		log.Printf("handlers: renew session token: %v", err)
	}
	h.Sessions.Put(r.Context(), "userID", user.ID)

	writeJSON(w, http.StatusCreated, viewUser(user))
}

// Login authenticates an email/password pair and starts a session.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := models.Authenticate(h.DB, req.Email, req.Password)
	if err != nil {
		// Same response for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.Sessions.RenewToken(r.Context()); err != nil {
		log.Printf("handlers: renew session token: %v", err)
	}
	h.Sessions.Put(r.Context(), "userID", user.ID)

	writeJSON(w, http.StatusOK, viewUser(user))
}

// Logout destroys the current session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context()); err != nil {
		log.Printf("handlers: destroy session: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Session reports the current authentication state and CSRF token. Clients
// call it on load to bootstrap.
func (h *Auth) Session(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"csrfToken": middleware.EnsureCSRFToken(h.Sessions, r.Context()),
	}

	userID := h.Sessions.GetInt64(r.Context(), "userID")
	if userID != 0 {
		if user, err := models.GetUserByID(h.DB, userID); err == nil {
			resp["user"] = viewUser(user)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

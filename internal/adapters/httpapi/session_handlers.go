package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

type LoginRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

type RegisterRequest struct {
	Name     string              `json:"name"`
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SessionResponse struct {
	User      User       `json:"user"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func sessionFromDomain(s domain.Session) SessionResponse {
	out := SessionResponse{User: User{ID: int64(s.User.ID), Name: s.User.Name, Email: s.User.Email}}
	if !s.ExpiresAt.IsZero() {
		e := s.ExpiresAt.UTC()
		out.ExpiresAt = &e
	}
	return out
}

// decodeBody decodes a JSON request body, writing a 422 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", map[string]any{"body": err.Error()})
		return false
	}
	return true
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.Accounts.Login(r.Context(), account.LoginInput{Email: string(req.Email), Password: req.Password})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setSessionCookie(w, s.Cookies, sess)
	writeJSON(w, http.StatusOK, sessionFromDomain(sess))
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.Accounts.Register(r.Context(), account.RegisterInput{Name: req.Name, Email: string(req.Email), Password: req.Password})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setSessionCookie(w, s.Cookies, sess)
	writeJSON(w, http.StatusCreated, sessionFromDomain(sess))
}

func (s *Server) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.Accounts.GoogleLogin(r.Context(), req.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setSessionCookie(w, s.Cookies, sess)
	writeJSON(w, http.StatusOK, sessionFromDomain(sess))
}

// GetSession confirms the session with the remote API.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	cur, ok := account.SessionFromContext(r.Context())
	if !ok {
		s.fail(w, r, account.ErrUnauthenticated)
		return
	}
	sess, err := s.Accounts.Restore(r.Context(), cur.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionFromDomain(sess))
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if cur, ok := account.SessionFromContext(r.Context()); ok {
		if err := s.Accounts.Logout(r.Context(), cur.ID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	clearSessionCookie(w, s.Cookies)
	w.WriteHeader(http.StatusNoContent)
}

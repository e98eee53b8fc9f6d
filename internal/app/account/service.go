package account

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/platform/auth/tokeninfo"
	clockport "github.com/foodswipe/foodswipe-edge/internal/ports/out/clock"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

type Service struct {
	auth  restaurantapi.Auth
	store sessionstore.Store
	clk   clockport.Clock

	newSessionID func() domain.SessionID

	// TTL caps a session's lifetime; the token's own exp claim wins when earlier.
	TTL time.Duration
}

func NewService(auth restaurantapi.Auth, store sessionstore.Store, clk clockport.Clock, ttl time.Duration) *Service {
	return &Service{
		auth:  auth,
		store: store,
		clk:   clk,
		newSessionID: func() domain.SessionID {
			return domain.SessionID(uuid.NewString())
		},
		TTL: ttl,
	}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return domain.Session{}, validation("missing email or password", map[string]any{
			"email":    requiredDetail(email),
			"password": requiredDetail(in.Password),
		})
	}
	res, err := s.auth.Login(ctx, email, in.Password)
	if err != nil {
		return domain.Session{}, mapAuthError(err)
	}
	return s.open(ctx, res)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Session, error) {
	name := domain.NormalizeHumanName(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return domain.Session{}, validation("missing required fields", map[string]any{
			"name":     requiredDetail(name),
			"email":    requiredDetail(email),
			"password": requiredDetail(in.Password),
		})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Session{}, validation("invalid email", map[string]any{"email": err.Error()})
	}
	res, err := s.auth.Register(ctx, name, email, in.Password)
	if err != nil {
		return domain.Session{}, mapAuthError(err)
	}
	return s.open(ctx, res)
}

func (s *Service) GoogleLogin(ctx context.Context, idToken string) (domain.Session, error) {
	if idToken == "" {
		return domain.Session{}, validation("missing token", map[string]any{"token": "required"})
	}
	res, err := s.auth.GoogleLogin(ctx, idToken)
	if err != nil {
		return domain.Session{}, mapAuthError(err)
	}
	return s.open(ctx, res)
}

func (s *Service) open(ctx context.Context, res restaurantapi.AuthResult) (domain.Session, error) {
	now := s.clk.Now()
	sess := domain.Session{
		ID:        s.newSessionID(),
		Token:     res.Token,
		User:      res.User,
		CreatedAt: now,
		ExpiresAt: s.expiry(res.Token, now),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

func (s *Service) expiry(token string, now time.Time) time.Time {
	var exp time.Time
	if c, err := tokeninfo.Parse(token); err == nil {
		exp = c.ExpiresAt
	}
	if s.TTL > 0 {
		if limit := now.Add(s.TTL); exp.IsZero() || limit.Before(exp) {
			exp = limit
		}
	}
	return exp
}

// Restore loads a session and confirms its token with the remote API. Expired or
// rejected sessions are deleted and reported as ErrUnauthenticated.
func (s *Service) Restore(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	sess, err := s.Lookup(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}

	// A 401 here also drops the session through Credentials.
	u, err := s.auth.Me(WithSession(ctx, sess))
	if err != nil {
		if restaurantapi.StatusOf(err) == 401 {
			_ = s.store.Delete(ctx, id)
			return domain.Session{}, ErrUnauthenticated
		}
		return domain.Session{}, err
	}
	if u != sess.User {
		sess.User = u
		if err := s.store.Put(ctx, sess); err != nil {
			return domain.Session{}, err
		}
	}
	return sess, nil
}

// Lookup loads a live session without contacting the remote API.
func (s *Service) Lookup(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if id == "" {
		return domain.Session{}, ErrUnauthenticated
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return domain.Session{}, ErrUnauthenticated
		}
		return domain.Session{}, err
	}
	if sess.Expired(s.clk.Now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, ErrUnauthenticated
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, id domain.SessionID) error {
	if id == "" {
		return nil
	}
	return s.store.Delete(ctx, id)
}

func validation(msg string, details map[string]any) *Error {
	for k, v := range details {
		if v == nil {
			delete(details, k)
		}
	}
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

func requiredDetail(v string) any {
	if v == "" {
		return "required"
	}
	return nil
}

func mapAuthError(err error) error {
	msg := restaurantapi.MessageOf(err)
	switch restaurantapi.StatusOf(err) {
	case 400:
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: orDefault(msg, "invalid request")}
	case 401:
		return &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: orDefault(msg, "Invalid email or password")}
	case 409:
		return &Error{Status: 409, Code: "EMAIL_ALREADY_REGISTERED", Message: orDefault(msg, "Email already registered")}
	default:
		return err
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

// Store is a Postgres implementation of sessionstore.Store.
// Expired rows are hidden from Get and removed by DeleteExpired.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if s.pool == nil {
		return domain.Session{}, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT token, user_id, user_name, user_email, created_at, expires_at
		FROM edge_sessions
		WHERE session_id = $1
		  AND (expires_at IS NULL OR expires_at > $2)
	`, string(id), s.now())

	sess := domain.Session{ID: id}
	var (
		userID    int64
		expiresAt *time.Time
	)
	if err := row.Scan(&sess.Token, &userID, &sess.User.Name, &sess.User.Email, &sess.CreatedAt, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, sessionstore.ErrNotFound
		}
		return domain.Session{}, err
	}
	sess.User.ID = domain.UserID(userID)
	sess.CreatedAt = sess.CreatedAt.UTC()
	if expiresAt != nil {
		sess.ExpiresAt = expiresAt.UTC()
	}
	return sess, nil
}

func (s *Store) Put(ctx context.Context, sess domain.Session) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	var expiresAt *time.Time
	if !sess.ExpiresAt.IsZero() {
		e := sess.ExpiresAt.UTC()
		expiresAt = &e
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO edge_sessions (
			session_id,
			token,
			user_id,
			user_name,
			user_email,
			created_at,
			expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (session_id)
		DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			user_email = EXCLUDED.user_email,
			expires_at = EXCLUDED.expires_at
	`,
		string(sess.ID),
		sess.Token,
		int64(sess.User.ID),
		sess.User.Name,
		sess.User.Email,
		createdAt.UTC(),
		expiresAt,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM edge_sessions WHERE session_id = $1`, string(id))
	return err
}

// DeleteExpired removes sessions whose token expired before now and reports how many.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM edge_sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

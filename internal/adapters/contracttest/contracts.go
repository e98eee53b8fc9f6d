package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	sessionstoreport "github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

type CleanupFunc = func()

type SessionStoreFactory func(t *testing.T) (sessionstoreport.Store, CleanupFunc)

// RunSessionStore exercises the behaviors every sessionstore.Store must share.
// Stores may evict expired sessions, so fixtures expire well in the future.
func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Now().UTC().Truncate(time.Second)
	id := domain.SessionID(uuid.NewString())

	if _, err := store.Get(ctx, id); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}

	sess := domain.Session{
		ID:        id,
		Token:     "tok-1",
		User:      domain.User{ID: 7, Name: "Alice", Email: "alice@example.com"},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "tok-1" || got.User != sess.User {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.CreatedAt.Equal(sess.CreatedAt) || !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatalf("timestamps not preserved: got %v/%v want %v/%v", got.CreatedAt, got.ExpiresAt, sess.CreatedAt, sess.ExpiresAt)
	}

	// Overwrite semantics.
	sess2 := sess
	sess2.Token = "tok-2"
	sess2.User.Name = "Alice Renamed"
	if err := store.Put(ctx, sess2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = store.Get(ctx, id)
	if err != nil || got.Token != "tok-2" || got.User.Name != "Alice Renamed" {
		t.Fatalf("expected overwritten session, got err=%v session=%+v", err, got)
	}

	// Sessions without an expiry are kept.
	noExp := domain.Session{ID: domain.SessionID(uuid.NewString()), Token: "tok-3", CreatedAt: now}
	if err := store.Put(ctx, noExp); err != nil {
		t.Fatalf("Put no expiry: %v", err)
	}
	if got, err := store.Get(ctx, noExp.ID); err != nil || !got.ExpiresAt.IsZero() {
		t.Fatalf("Get no expiry: err=%v expiresAt=%v", err, got.ExpiresAt)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
	}
	// Deleting a missing session is not an error.
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

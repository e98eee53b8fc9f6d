package remoteapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/foodswipe/foodswipe-edge/internal/adapters/remoteapi"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/platform/fakeapi"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/photofetch"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
)

type staticCreds struct {
	mu           sync.Mutex
	token        string
	unauthorized int
}

func (c *staticCreds) Token(context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

func (c *staticCreds) Unauthorized(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized++
	c.token = ""
}

func newFake(t *testing.T, opts remoteapi.Options) (*remoteapi.Client, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(fakeapi.Options{})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	c, err := remoteapi.New(srv.URL, opts)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return c, fake
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	t.Parallel()

	if _, err := remoteapi.New("/api", remoteapi.Options{}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	t.Parallel()

	creds := &staticCreds{}
	c, _ := newFake(t, remoteapi.Options{Credentials: creds})
	ctx := context.Background()

	reg, err := c.Auth().Register(ctx, "Ann", "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if reg.Token == "" || reg.User.Email != "ann@example.com" {
		t.Fatalf("Register result=%+v", reg)
	}

	if _, err := c.Auth().Login(ctx, "ann@example.com", "wrong"); remoteapi.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("Login wrong password err=%v", err)
	}

	login, err := c.Auth().Login(ctx, "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("Login err=%v", err)
	}
	creds.token = login.Token

	me, err := c.Auth().Me(ctx)
	if err != nil {
		t.Fatalf("Me err=%v", err)
	}
	if me.ID != reg.User.ID || me.Name != "Ann" {
		t.Fatalf("Me=%+v", me)
	}
	if creds.unauthorized != 0 {
		t.Fatalf("unauthorized=%d", creds.unauthorized)
	}
}

func TestTransport_401ClearsAttachedToken(t *testing.T) {
	t.Parallel()

	creds := &staticCreds{token: "not-a-token"}
	c, _ := newFake(t, remoteapi.Options{Credentials: creds})

	_, err := c.Auth().Me(context.Background())
	var ae *remoteapi.APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("err=%v, want 401 APIError", err)
	}
	if ae.Message != "Unauthorized" {
		t.Fatalf("message=%q", ae.Message)
	}
	if creds.unauthorized != 1 || creds.token != "" {
		t.Fatalf("unauthorized=%d token=%q", creds.unauthorized, creds.token)
	}
}

func TestTransport_401WithoutTokenDoesNotNotify(t *testing.T) {
	t.Parallel()

	creds := &staticCreds{}
	c, _ := newFake(t, remoteapi.Options{Credentials: creds})

	if _, err := c.Favorites().List(context.Background()); remoteapi.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("err=%v, want 401", err)
	}
	if creds.unauthorized != 0 {
		t.Fatalf("Unauthorized called without an attached token")
	}
}

func TestTransport_TokenOnlySentToAPIHost(t *testing.T) {
	t.Parallel()

	var gotAuth string
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	t.Cleanup(other.Close)

	c, _ := newFake(t, remoteapi.Options{
		Credentials: &staticCreds{token: "secret"},
		PhotoHosts:  []string{strings.TrimPrefix(other.URL, "http://")},
	})
	if _, err := c.FetchPhoto(context.Background(), other.URL+"/p.png"); err != nil {
		t.Fatalf("FetchPhoto err=%v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization leaked to foreign host: %q", gotAuth)
	}
}

func TestFetchPhoto_RejectsHostsOffTheAllowlist(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	t.Cleanup(foreign.Close)

	c, _ := newFake(t, remoteapi.Options{})
	for _, u := range []string{foreign.URL + "/secret.png", "file:///etc/passwd", "gopher://" + strings.TrimPrefix(foreign.URL, "http://") + "/x"} {
		if _, err := c.FetchPhoto(context.Background(), u); !errors.Is(err, remoteapi.ErrHostNotAllowed) {
			t.Fatalf("FetchPhoto(%q) err=%v, want ErrHostNotAllowed", u, err)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("foreign host received %d requests", n)
	}
}

func TestFetchPhoto_RedirectOffTheAllowlistRefused(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	t.Cleanup(foreign.Close)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, foreign.URL+"/internal.png", http.StatusFound)
	}))
	t.Cleanup(api.Close)

	c, err := remoteapi.New(api.URL, remoteapi.Options{})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	if _, err := c.FetchPhoto(context.Background(), "/api/places/photo?photoReference=abcdef"); !errors.Is(err, remoteapi.ErrHostNotAllowed) {
		t.Fatalf("err=%v, want ErrHostNotAllowed", err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("foreign host received %d requests", n)
	}
}

func TestFetchPhoto_RelativeAndFailures(t *testing.T) {
	t.Parallel()

	c, fake := newFake(t, remoteapi.Options{})
	ctx := context.Background()

	p, err := c.FetchPhoto(ctx, "/api/places/cached-photo?photoReference=AWU5eFghvq&maxwidth=40")
	if err != nil {
		t.Fatalf("FetchPhoto err=%v", err)
	}
	if p.ContentType != "image/png" || len(p.Data) == 0 {
		t.Fatalf("photo=%+v", p)
	}

	fake.SetPhotoFailures(true, false)
	if _, err := c.FetchPhoto(ctx, "/api/places/cached-photo?photoReference=AWU5eFghvq&maxwidth=40"); remoteapi.StatusOf(err) != http.StatusBadGateway {
		t.Fatalf("err=%v, want 502", err)
	}
	if _, err := c.FetchPhoto(ctx, "/api/places/details?placeId=x"); remoteapi.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("err=%v", err)
	}

	reqs := fake.PhotoRequests()
	if len(reqs) != 2 || !strings.Contains(reqs[0], "photoReference=AWU5eFghvq") {
		t.Fatalf("photo requests=%v", reqs)
	}
}

func TestFetchPhoto_NotImageAndTooLarge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/html" {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(make([]byte, 2048))
	}))
	t.Cleanup(srv.Close)

	c, err := remoteapi.New(srv.URL, remoteapi.Options{PhotoMaxBytes: 1024})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	if _, err := c.FetchPhoto(context.Background(), "/html"); !errors.Is(err, photofetch.ErrNotImage) {
		t.Fatalf("err=%v, want ErrNotImage", err)
	}
	if _, err := c.FetchPhoto(context.Background(), "/big.jpg"); !errors.Is(err, remoteapi.ErrPhotoTooLarge) {
		t.Fatalf("err=%v, want ErrPhotoTooLarge", err)
	}
}

func TestPlacesAndRestaurants(t *testing.T) {
	t.Parallel()

	creds := &staticCreds{}
	c, _ := newFake(t, remoteapi.Options{Credentials: creds})
	ctx := context.Background()

	place, err := c.Places().TextSearch(ctx, restaurantapi.TextSearch{TextQuery: "台北101"})
	if err != nil {
		t.Fatalf("TextSearch err=%v", err)
	}
	if place.Location == nil || place.DisplayName != "台北101" {
		t.Fatalf("place=%+v", place)
	}
	if _, err := c.Places().TextSearch(ctx, restaurantapi.TextSearch{TextQuery: "nowhere"}); remoteapi.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("err=%v, want 404", err)
	}

	all, err := c.Restaurants().Nearby(ctx, restaurantapi.NearbyQuery{
		Latitude: place.Location.Latitude, Longitude: place.Location.Longitude, Category: domain.CategoryAll,
	})
	if err != nil {
		t.Fatalf("Nearby err=%v", err)
	}
	if len(all) != len(fakeapi.SeedRestaurants()) || all[0].ID == nil || *all[0].ID != 1 {
		t.Fatalf("nearby=%+v", all)
	}
	cafes, err := c.Restaurants().Nearby(ctx, restaurantapi.NearbyQuery{
		Latitude: 25.04, Longitude: 121.53, Category: domain.CategoryCafe,
	})
	if err != nil || len(cafes) != 1 || cafes[0].Name != "Simple Kaffa" {
		t.Fatalf("cafes=%+v err=%v", cafes, err)
	}

	detail, err := c.Places().Details(ctx, "ChIJsimplekaffa")
	if err != nil {
		t.Fatalf("Details err=%v", err)
	}
	if detail.Name != "Simple Kaffa" || len(detail.Photos) != 1 {
		t.Fatalf("detail=%+v", detail)
	}
}

func TestFavorites_RoundTrip(t *testing.T) {
	t.Parallel()

	creds := &staticCreds{}
	c, _ := newFake(t, remoteapi.Options{Credentials: creds})
	ctx := context.Background()

	res, err := c.Auth().Register(ctx, "Bo", "bo@example.com", "pw")
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	creds.token = res.Token

	if _, err := c.Favorites().Random(ctx); remoteapi.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("Random on empty err=%v, want 404", err)
	}
	if err := c.Favorites().Add(ctx, 3); err != nil {
		t.Fatalf("Add err=%v", err)
	}
	favs, err := c.Favorites().List(ctx)
	if err != nil || len(favs) != 1 || !favs[0].IsFavorite {
		t.Fatalf("List=%+v err=%v", favs, err)
	}
	got, err := c.Restaurants().Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if !got.IsFavorite || got.Details == nil || got.Latitude == nil {
		t.Fatalf("detail=%+v", got)
	}
	if err := c.Favorites().Remove(ctx, 3); err != nil {
		t.Fatalf("Remove err=%v", err)
	}
	if err := c.Favorites().Remove(ctx, 3); remoteapi.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("second Remove err=%v, want 404", err)
	}
}

package discovery

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/foodswipe/foodswipe-edge/internal/adapters/remoteapi"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/platform/fakeapi"
)

type tokenCreds struct{ token string }

func (c *tokenCreds) Token(context.Context) (string, bool) { return c.token, c.token != "" }
func (c *tokenCreds) Unauthorized(context.Context)         { c.token = "" }

type testEnv struct {
	svc    *Service
	creds  *tokenCreds
	client *remoteapi.Client
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	fake := fakeapi.New(fakeapi.Options{})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	creds := &tokenCreds{}
	client, err := remoteapi.New(srv.URL, remoteapi.Options{Credentials: creds})
	if err != nil {
		t.Fatalf("remoteapi.New err=%v", err)
	}
	return testEnv{
		svc:    NewService(client.Places(), client.Restaurants(), client.Favorites()),
		creds:  creds,
		client: client,
	}
}

func (e testEnv) signIn(t *testing.T) {
	t.Helper()
	res, err := e.client.Auth().Register(context.Background(), "Ann", "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	e.creds.token = res.Token
}

func ptr(f float64) *float64 { return &f }

func TestService_Nearby_DefaultsAndCards(t *testing.T) {
	t.Parallel()

	svc := newTestEnv(t).svc
	res, err := svc.Nearby(context.Background(), NearbyQuery{})
	if err != nil {
		t.Fatalf("Nearby err=%v", err)
	}
	if res.Location != domain.DefaultLocation || res.Category != domain.CategoryAll {
		t.Fatalf("location=%+v category=%q", res.Location, res.Category)
	}
	if len(res.Restaurants) != len(fakeapi.SeedRestaurants()) {
		t.Fatalf("restaurants=%d", len(res.Restaurants))
	}
	card := res.Restaurants[0]
	if !strings.HasPrefix(card.PhotoURL, "/photo?") || !strings.Contains(card.PhotoURL, "maxwidth=600") {
		t.Fatalf("photoURL=%q", card.PhotoURL)
	}
	u, err := url.Parse(card.PhotoURL)
	if err != nil {
		t.Fatalf("parse photoURL err=%v", err)
	}
	if got, want := u.Query().Get("photoReference"), "/api/restaurants/photo/AWU5eFghvqDinTaiFung01?maxwidth=600"; got != want {
		t.Fatalf("photoReference=%q want %q", got, want)
	}
	if !strings.Contains(card.MapsURL, "query_place_id="+string(card.PlaceID)) {
		t.Fatalf("mapsURL=%q", card.MapsURL)
	}
}

func TestService_Nearby_TextSearchAndFallback(t *testing.T) {
	t.Parallel()

	svc := newTestEnv(t).svc
	ctx := context.Background()

	res, err := svc.Nearby(ctx, NearbyQuery{Text: "大安區", Category: "咖啡"})
	if err != nil {
		t.Fatalf("Nearby err=%v", err)
	}
	if res.Location.Label != "大安區" || len(res.Restaurants) != 1 {
		t.Fatalf("res=%+v", res)
	}

	res, err = svc.Nearby(ctx, NearbyQuery{Text: "nowhere", Latitude: ptr(25.05), Longitude: ptr(121.52)})
	if err != nil {
		t.Fatalf("Nearby err=%v", err)
	}
	if res.Location.Latitude != 25.05 || res.Location.Longitude != 121.52 {
		t.Fatalf("fallback location=%+v", res.Location)
	}
}

func TestService_Nearby_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestEnv(t).svc
	ctx := context.Background()
	ae := (*Error)(nil)

	if _, err := svc.Nearby(ctx, NearbyQuery{Category: "bbq"}); !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for category", err)
	}
	if _, err := svc.Nearby(ctx, NearbyQuery{Latitude: ptr(1)}); !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for lone latitude", err)
	}
	if _, err := svc.Nearby(ctx, NearbyQuery{Latitude: ptr(91), Longitude: ptr(0)}); !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for out of range", err)
	}
}

func TestService_FavoritesFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := env.svc
	ctx := context.Background()

	if _, err := svc.Favorites(ctx); !errors.Is(err, errUnauthenticated) {
		t.Fatalf("Favorites without session err=%v", err)
	}
	env.signIn(t)

	if _, err := svc.RandomFavorite(ctx); !errors.Is(err, ErrNoFavorites) {
		t.Fatalf("RandomFavorite err=%v, want ErrNoFavorites", err)
	}
	on, err := svc.ToggleFavorite(ctx, 2, false)
	if err != nil || !on {
		t.Fatalf("ToggleFavorite on=%v err=%v", on, err)
	}
	favs, err := svc.Favorites(ctx)
	if err != nil || len(favs) != 1 || favs[0].Name != "永康牛肉麵" {
		t.Fatalf("favorites=%+v err=%v", favs, err)
	}
	pick, err := svc.RandomFavorite(ctx)
	if err != nil || pick.ID == nil || *pick.ID != 2 {
		t.Fatalf("random=%+v err=%v", pick, err)
	}
	if !strings.Contains(pick.PhotoURL, "maxwidth=400") {
		t.Fatalf("random photoURL=%q", pick.PhotoURL)
	}

	on, err = svc.ToggleFavorite(ctx, 2, true)
	if err != nil || on {
		t.Fatalf("ToggleFavorite off=%v err=%v", on, err)
	}
	// Removing again is not an error.
	if err := svc.RemoveFavorite(ctx, 2); err != nil {
		t.Fatalf("RemoveFavorite err=%v", err)
	}
	ae := (*Error)(nil)
	if err := svc.AddFavorite(ctx, 999); !errors.As(err, &ae) || ae.Code != "RESTAURANT_NOT_FOUND" {
		t.Fatalf("AddFavorite unknown err=%v", err)
	}
}

func TestService_RestaurantAndPlaces(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.signIn(t)
	svc := env.svc
	ctx := context.Background()

	v, err := svc.Restaurant(ctx, 1)
	if err != nil {
		t.Fatalf("Restaurant err=%v", err)
	}
	if !strings.Contains(v.MapsURL, "query_place_id=ChIJdintaifung") || !strings.Contains(v.HeroURL, "maxwidth=800") {
		t.Fatalf("view=%+v", v)
	}
	if len(v.GalleryURLs) != 1 || !strings.Contains(v.GalleryURLs[0], "maxwidth=300") {
		t.Fatalf("gallery=%v", v.GalleryURLs)
	}
	ae := (*Error)(nil)
	if _, err := svc.Restaurant(ctx, 404); !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("Restaurant missing err=%v", err)
	}

	if _, err := svc.SearchPlaces(ctx, "  "); !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("SearchPlaces empty err=%v", err)
	}
	if _, err := svc.SearchPlaces(ctx, "nowhere"); !errors.As(err, &ae) || ae.Code != "PLACE_NOT_FOUND" {
		t.Fatalf("SearchPlaces nowhere err=%v", err)
	}
	d, err := svc.PlaceDetail(ctx, "ChIJsimplekaffa")
	if err != nil || d.Name != "Simple Kaffa" || len(d.PhotoURLs) != 1 {
		t.Fatalf("detail=%+v err=%v", d, err)
	}
}

func TestService_Card_UnsavedPlaceKeepsOpaqueReference(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil)
	c := svc.card(domain.Restaurant{Name: "Pop-up", PhotoReference: "AWU5eFghvqPopUp"}, CardPhotoWidth)
	u, err := url.Parse(c.PhotoURL)
	if err != nil {
		t.Fatalf("parse photoURL err=%v", err)
	}
	if got := u.Query().Get("photoReference"); got != "AWU5eFghvqPopUp" {
		t.Fatalf("photoReference=%q, want the opaque reference", got)
	}

	id := domain.RestaurantID(9)
	direct := svc.card(domain.Restaurant{ID: &id, PhotoReference: "https://cdn.example.com/p.jpg"}, CardPhotoWidth)
	if u, _ := url.Parse(direct.PhotoURL); u.Query().Get("photoReference") != "https://cdn.example.com/p.jpg" {
		t.Fatalf("fully-qualified reference rewritten: %q", direct.PhotoURL)
	}
}

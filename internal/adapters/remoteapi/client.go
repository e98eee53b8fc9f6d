package remoteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/photofetch"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
)

var (
	// ErrPhotoTooLarge indicates a photo body exceeded the configured limit.
	ErrPhotoTooLarge = errors.New("photo exceeds size limit")
	// ErrHostNotAllowed indicates a URL naming a host the client does not talk to.
	ErrHostNotAllowed = errors.New("host not allowed")
)

type Options struct {
	Timeout       time.Duration
	PhotoMaxBytes int64
	Credentials   Credentials
	// PhotoHosts lists extra hosts (host or host:port) absolute photo URLs may name.
	// The API host is always allowed.
	PhotoHosts []string
	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client is a typed client of the remote restaurant API.
type Client struct {
	base          *url.URL
	hc            *http.Client
	photoMaxBytes int64
	allowedHosts  map[string]bool
}

var (
	_ photofetch.Fetcher        = (*Client)(nil)
	_ restaurantapi.Auth        = AuthAPI{}
	_ restaurantapi.Places      = PlacesAPI{}
	_ restaurantapi.Restaurants = RestaurantsAPI{}
	_ restaurantapi.Favorites   = FavoritesAPI{}
)

func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PhotoMaxBytes <= 0 {
		opts.PhotoMaxBytes = 8 << 20
	}
	c := &Client{
		base:          u,
		photoMaxBytes: opts.PhotoMaxBytes,
		allowedHosts:  map[string]bool{strings.ToLower(u.Host): true},
	}
	for _, h := range opts.PhotoHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			c.allowedHosts[h] = true
		}
	}
	c.hc = &http.Client{
		Timeout:       opts.Timeout,
		Transport:     &authTransport{base: rt, host: u.Host, creds: opts.Credentials},
		CheckRedirect: c.checkRedirect,
	}
	return c, nil
}

func (c *Client) hostAllowed(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return c.allowedHosts[strings.ToLower(u.Host)] || c.allowedHosts[strings.ToLower(u.Hostname())]
}

// checkRedirect keeps redirects on allowed hosts.
func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if !c.hostAllowed(req.URL) {
		return fmt.Errorf("%w: redirect to %q", ErrHostNotAllowed, req.URL.Host)
	}
	return nil
}

func (c *Client) Auth() AuthAPI               { return AuthAPI{c} }
func (c *Client) Places() PlacesAPI           { return PlacesAPI{c} }
func (c *Client) Restaurants() RestaurantsAPI { return RestaurantsAPI{c} }
func (c *Client) Favorites() FavoritesAPI     { return FavoritesAPI{c} }

// resolve turns an API-relative reference into an absolute URL on the API origin.
func (c *Client) resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return c.base.ResolveReference(r).String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// FetchPhoto retrieves image bytes. photoURL is API-relative or absolute; absolute URLs
// must name the API host or one of Options.PhotoHosts, and are rejected without a
// request otherwise.
func (c *Client) FetchPhoto(ctx context.Context, photoURL string) (photofetch.Photo, error) {
	ref, err := url.Parse(photoURL)
	if err != nil {
		return photofetch.Photo{}, err
	}
	target := c.base.ResolveReference(ref)
	if !c.hostAllowed(target) {
		return photofetch.Photo{}, fmt.Errorf("%w: photo url %q", ErrHostNotAllowed, target.Host)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return photofetch.Photo{}, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return photofetch.Photo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return photofetch.Photo{}, newAPIError(resp)
	}
	ct := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err != nil || !strings.HasPrefix(mt, "image/") {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return photofetch.Photo{}, fmt.Errorf("%w: content-type %q", photofetch.ErrNotImage, ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.photoMaxBytes+1))
	if err != nil {
		return photofetch.Photo{}, err
	}
	if int64(len(data)) > c.photoMaxBytes {
		return photofetch.Photo{}, ErrPhotoTooLarge
	}
	return photofetch.Photo{URL: photoURL, ContentType: ct, Data: data}, nil
}

type AuthAPI struct{ c *Client }

func (a AuthAPI) Register(ctx context.Context, name, email, password string) (restaurantapi.AuthResult, error) {
	var out authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out); err != nil {
		return restaurantapi.AuthResult{}, err
	}
	return restaurantapi.AuthResult{Token: out.Token, User: out.User.toDomain()}, nil
}

func (a AuthAPI) Login(ctx context.Context, email, password string) (restaurantapi.AuthResult, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return restaurantapi.AuthResult{}, err
	}
	return restaurantapi.AuthResult{Token: out.Token, User: out.User.toDomain()}, nil
}

func (a AuthAPI) GoogleLogin(ctx context.Context, idToken string) (restaurantapi.AuthResult, error) {
	var out authResponse
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/google", nil, map[string]string{"token": idToken}, &out); err != nil {
		return restaurantapi.AuthResult{}, err
	}
	return restaurantapi.AuthResult{Token: out.Token, User: out.User.toDomain()}, nil
}

func (a AuthAPI) Me(ctx context.Context) (domain.User, error) {
	var out userDTO
	if err := a.c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

type PlacesAPI struct{ c *Client }

func (p PlacesAPI) TextSearch(ctx context.Context, q restaurantapi.TextSearch) (domain.Place, error) {
	var out textSearchResponse
	req := textSearchRequest{TextQuery: q.TextQuery, Fields: q.Fields}
	if err := p.c.do(ctx, http.MethodPost, "/api/places/textsearch", nil, req, &out); err != nil {
		return domain.Place{}, err
	}
	if out.ID == "" && len(out.Places) > 0 {
		return out.Places[0].toDomain(), nil
	}
	return out.placeDTO.toDomain(), nil
}

func (p PlacesAPI) Details(ctx context.Context, id domain.PlaceID) (domain.PlaceDetail, error) {
	var out placeDetailDTO
	q := url.Values{"placeId": {string(id)}}
	if err := p.c.do(ctx, http.MethodGet, "/api/places/details", q, nil, &out); err != nil {
		return domain.PlaceDetail{}, err
	}
	return out.toDomain(), nil
}

type RestaurantsAPI struct{ c *Client }

func (r RestaurantsAPI) Nearby(ctx context.Context, q restaurantapi.NearbyQuery) ([]domain.Restaurant, error) {
	params := url.Values{
		"lat":      {strconv.FormatFloat(q.Latitude, 'f', -1, 64)},
		"lng":      {strconv.FormatFloat(q.Longitude, 'f', -1, 64)},
		"category": {string(q.Category)},
	}
	if q.RadiusMeters > 0 {
		params.Set("radius", strconv.Itoa(q.RadiusMeters))
	}
	var out []restaurantDTO
	if err := r.c.do(ctx, http.MethodGet, "/api/restaurants/nearby", params, nil, &out); err != nil {
		return nil, err
	}
	return restaurantsToDomain(out), nil
}

func (r RestaurantsAPI) Get(ctx context.Context, id domain.RestaurantID) (domain.RestaurantDetail, error) {
	var out restaurantDetailDTO
	path := "/api/restaurants/" + strconv.FormatInt(int64(id), 10)
	if err := r.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return domain.RestaurantDetail{}, err
	}
	return out.toDomain(), nil
}

type FavoritesAPI struct{ c *Client }

func (f FavoritesAPI) List(ctx context.Context) ([]domain.Restaurant, error) {
	var out []restaurantDTO
	if err := f.c.do(ctx, http.MethodGet, "/api/favorites", nil, nil, &out); err != nil {
		return nil, err
	}
	return restaurantsToDomain(out), nil
}

func (f FavoritesAPI) Add(ctx context.Context, id domain.RestaurantID) error {
	return f.c.do(ctx, http.MethodPost, "/api/favorites", nil, addFavoriteRequest{RestaurantID: int64(id)}, nil)
}

func (f FavoritesAPI) Remove(ctx context.Context, id domain.RestaurantID) error {
	return f.c.do(ctx, http.MethodDelete, "/api/favorites/"+strconv.FormatInt(int64(id), 10), nil, nil, nil)
}

func (f FavoritesAPI) Random(ctx context.Context) (domain.Restaurant, error) {
	var out restaurantDTO
	if err := f.c.do(ctx, http.MethodGet, "/api/favorites/random", nil, nil, &out); err != nil {
		return domain.Restaurant{}, err
	}
	return out.toDomain(), nil
}

func restaurantsToDomain(in []restaurantDTO) []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(in))
	for _, r := range in {
		out = append(out, r.toDomain())
	}
	return out
}

// Package fakeapi is an in-memory stand-in for the remote restaurant API.
//
// It exists for local development (cmd/devapi) and tests. It is NOT a real backend:
// passwords are hashed with bare SHA-256, Google sign-in accepts "google:<email>"
// tokens, and places are served from a fixed seed.
package fakeapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodswipe/foodswipe-edge/internal/platform/auth/tokeninfo"
	"github.com/foodswipe/foodswipe-edge/internal/platform/auth/tokentest"
)

type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

type user struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	passwordHash string
}

// Restaurant is a seeded restaurant row.
type Restaurant struct {
	ID               int64
	PlaceID          string
	Name             string
	Address          string
	Lat, Lng         float64
	Rating           float64
	UserRatingsTotal int
	PhotoReference   string
	Category         string
	Phone            string
	Website          string
}

// Server holds the fake API state. It is safe for concurrent use.
type Server struct {
	opts Options

	mu          sync.Mutex
	users       map[int64]*user
	idByEmail   map[string]int64
	nextUserID  int64
	restaurants map[int64]Restaurant
	favorites   map[int64]map[int64]time.Time

	failCached   bool
	failStandard bool
	photoLog     []string
}

func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("dev-secret")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	s := &Server{
		opts:        opts,
		users:       make(map[int64]*user),
		idByEmail:   make(map[string]int64),
		nextUserID:  1,
		restaurants: make(map[int64]Restaurant),
		favorites:   make(map[int64]map[int64]time.Time),
	}
	for _, r := range SeedRestaurants() {
		s.restaurants[r.ID] = r
	}
	return s
}

// SeedRestaurants returns the restaurants every Server starts with.
func SeedRestaurants() []Restaurant {
	return []Restaurant{
		{ID: 1, PlaceID: "ChIJdintaifung", Name: "鼎泰豐 信義店", Address: "台北市大安區信義路二段194號", Lat: 25.0339, Lng: 121.5300, Rating: 4.6, UserRatingsTotal: 21034, PhotoReference: "AWU5eFghvqDinTaiFung01", Category: "餐廳", Phone: "02 2321 8928", Website: "https://www.dintaifung.com.tw"},
		{ID: 2, PlaceID: "ChIJyongkang", Name: "永康牛肉麵", Address: "台北市大安區金山南路二段31巷17號", Lat: 25.0330, Lng: 121.5290, Rating: 4.3, UserRatingsTotal: 8412, PhotoReference: "AWU5eFghvqYongKang02", Category: "小吃"},
		{ID: 3, PlaceID: "ChIJsimplekaffa", Name: "Simple Kaffa", Address: "台北市中正區忠孝東路二段27號", Lat: 25.0441, Lng: 121.5290, Rating: 4.5, UserRatingsTotal: 5120, PhotoReference: "AWU5eFghvqKaffa03", Category: "咖啡"},
		{ID: 4, PlaceID: "ChIJyumcha", Name: "Yu Chocolatier", Address: "台北市大安區新生南路一段161巷8號", Lat: 25.0365, Lng: 121.5330, Rating: 4.7, UserRatingsTotal: 1204, PhotoReference: "tiny-AWU5eFghvqYu04", Category: "甜點"},
		{ID: 5, PlaceID: "ChIJbroken", Name: "無照片小館", Address: "台北市中山區南京東路一段1號", Lat: 25.0520, Lng: 121.5230, Rating: 3.9, UserRatingsTotal: 88, PhotoReference: "broken-AWU5eFghvq05", Category: "餐廳"},
	}
}

// SetPhotoFailures makes the cached and/or standard places photo endpoints answer 502.
func (s *Server) SetPhotoFailures(cached, standard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCached, s.failStandard = cached, standard
}

// PhotoRequests returns the request URIs served by the photo endpoints so far.
func (s *Server) PhotoRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.photoLog...)
}

// DeleteUser removes an account; tokens already issued for it are then rejected
// with 401, as the real API does for deleted users.
func (s *Server) DeleteUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		delete(s.idByEmail, u.Email)
	}
	delete(s.users, userID)
	delete(s.favorites, userID)
}

// MintToken issues a token for userID as the auth endpoints would.
func (s *Server) MintToken(userID int64) (string, error) {
	return tokentest.MintHS256(s.opts.Secret, userID, s.opts.Now(), s.opts.TokenTTL, nil)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/google", s.googleLogin)
		r.With(s.requireUser).Get("/auth/me", s.me)

		r.Post("/places/textsearch", s.textSearch)
		r.Get("/places/details", s.placeDetails)
		r.Get("/places/cached-photo", s.placesPhoto(true))
		r.Get("/places/photo", s.placesPhoto(false))

		r.Get("/restaurants/nearby", s.nearby)
		r.Get("/restaurants/photo/{ref}", s.restaurantPhoto)
		r.With(s.requireUser).Get("/restaurants/{id}", s.restaurant)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/favorites", s.listFavorites)
			r.Post("/favorites", s.addFavorite)
			r.Get("/favorites/random", s.randomFavorite)
			r.Delete("/favorites/{id}", s.removeFavorite)
		})
	})
	return r
}

type userIDKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c, err := tokeninfo.VerifyHS256(strings.TrimSpace(raw), s.opts.Secret, s.opts.Now())
		if err != nil || c.UserID == 0 {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		s.mu.Lock()
		_, exists := s.users[c.UserID]
		s.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), c.UserID)))
	})
}

func hashPassword(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}

func (s *Server) issue(w http.ResponseWriter, status int, message string, u user) {
	tok, err := s.MintToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, status, map[string]any{"message": message, "token": tok, "user": u})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	s.mu.Lock()
	if _, ok := s.idByEmail[in.Email]; ok {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	u := s.createUserLocked(in.Name, in.Email, hashPassword(in.Password))
	s.mu.Unlock()
	s.issue(w, http.StatusCreated, "User registered successfully", u)
}

func (s *Server) createUserLocked(name, email, hash string) user {
	u := &user{ID: s.nextUserID, Name: name, Email: email, passwordHash: hash}
	s.nextUserID++
	s.users[u.ID] = u
	s.idByEmail[email] = u.ID
	return *u
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing email or password")
		return
	}
	s.mu.Lock()
	id, ok := s.idByEmail[in.Email]
	var u user
	if ok {
		u = *s.users[id]
	}
	s.mu.Unlock()
	if !ok || u.passwordHash != hashPassword(in.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.issue(w, http.StatusOK, "Login successful", u)
}

func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Token string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		writeError(w, http.StatusBadRequest, "Missing token")
		return
	}
	email, ok := strings.CutPrefix(in.Token, "google:")
	if !ok || !strings.Contains(email, "@") {
		writeError(w, http.StatusUnauthorized, "Wrong issuer")
		return
	}
	s.mu.Lock()
	var u user
	if id, exists := s.idByEmail[email]; exists {
		u = *s.users[id]
	} else {
		u = s.createUserLocked(strings.SplitN(email, "@", 2)[0], email, "")
	}
	s.mu.Unlock()
	s.issue(w, http.StatusOK, "Login successful", u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id := userIDFrom(r.Context())
	s.mu.Lock()
	u := *s.users[id]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) textSearch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TextQuery string   `json:"textQuery"`
		Fields    []string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.TextQuery) == "" {
		writeError(w, http.StatusBadRequest, "必須提供搜尋字串")
		return
	}
	if strings.EqualFold(in.TextQuery, "nowhere") {
		writeError(w, http.StatusNotFound, "找不到指定的地點")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               "ChIJ" + strings.ReplaceAll(in.TextQuery, " ", ""),
		"displayName":      map[string]string{"text": in.TextQuery, "languageCode": "zh-TW"},
		"formattedAddress": in.TextQuery + ", 台灣",
		"location":         map[string]float64{"latitude": 25.0418, "longitude": 121.5352},
	})
}

func (s *Server) placeDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("placeId")
	if id == "" {
		id = q.Get("placeid")
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing placeId")
		return
	}
	rest, ok := s.byPlaceID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Place not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"place_id":               rest.PlaceID,
		"name":                   rest.Name,
		"formatted_address":      rest.Address,
		"rating":                 rest.Rating,
		"user_ratings_total":     rest.UserRatingsTotal,
		"formatted_phone_number": rest.Phone,
		"website":                rest.Website,
		"photos": []map[string]any{
			{"photo_reference": rest.PhotoReference, "width": 800, "height": 533},
		},
	})
}

func (s *Server) byPlaceID(placeID string) (Restaurant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rest := range s.restaurants {
		if rest.PlaceID == placeID {
			return rest, true
		}
	}
	return Restaurant{}, false
}

func (s *Server) placesPhoto(cached bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ref := q.Get("photoReference")
		if ref == "" {
			ref = q.Get("photoreference")
		}
		s.mu.Lock()
		s.photoLog = append(s.photoLog, r.URL.RequestURI())
		fail := (cached && s.failCached) || (!cached && s.failStandard)
		s.mu.Unlock()
		if fail {
			writeError(w, http.StatusBadGateway, "Failed to fetch photo")
			return
		}
		s.servePhoto(w, ref, q.Get("maxwidth"))
	}
}

func (s *Server) restaurantPhoto(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.photoLog = append(s.photoLog, r.URL.RequestURI())
	s.mu.Unlock()
	s.servePhoto(w, chi.URLParam(r, "ref"), r.URL.Query().Get("maxwidth"))
}

func (s *Server) servePhoto(w http.ResponseWriter, ref, maxWidth string) {
	if ref == "" {
		writeError(w, http.StatusBadRequest, "Photo reference is required")
		return
	}
	if strings.HasPrefix(ref, "broken") {
		writeError(w, http.StatusNotFound, "Failed to fetch photo")
		return
	}
	width, err := strconv.Atoi(maxWidth)
	if err != nil || width <= 0 {
		width = 400
	}
	width = min(width, 1600)
	height := width * 2 / 3
	if strings.HasPrefix(ref, "tiny") {
		width, height = 1, 1
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(solidPNG(width, height, ref))
}

func solidPNG(w, h int, seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

var categoryTypes = map[string]string{
	"小吃": "food",
	"餐廳": "restaurant",
	"甜點": "bakery",
	"咖啡": "cafe",
}

func (s *Server) nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || lat == 0 || lng == 0 {
		writeError(w, http.StatusBadRequest, "Missing location parameters")
		return
	}
	category := q.Get("category")
	if category == "" {
		category = "全部"
	}

	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.restaurants))
	for _, rest := range s.restaurants {
		if category != "全部" {
			want, ok := categoryTypes[category]
			if !ok {
				want = "restaurant"
			}
			if categoryTypes[rest.Category] != want {
				continue
			}
		}
		out = append(out, restaurantJSON(rest, false))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i]["id"].(int64) < out[j]["id"].(int64) })
	writeJSON(w, http.StatusOK, out)
}

func restaurantJSON(rest Restaurant, favorite bool) map[string]any {
	return map[string]any{
		"id":                 rest.ID,
		"place_id":           rest.PlaceID,
		"name":               rest.Name,
		"address":            rest.Address,
		"rating":             rest.Rating,
		"user_ratings_total": rest.UserRatingsTotal,
		"photo_reference":    rest.PhotoReference,
		"is_favorite":        favorite,
	}
}

func (s *Server) restaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	uid := userIDFrom(r.Context())
	s.mu.Lock()
	rest, ok := s.restaurants[id]
	_, fav := s.favorites[uid][id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	out := restaurantJSON(rest, fav)
	out["lat"] = rest.Lat
	out["lng"] = rest.Lng
	out["details"] = map[string]any{
		"formatted_address":      rest.Address,
		"formatted_phone_number": rest.Phone,
		"website":                rest.Website,
		"url":                    "https://maps.google.com/?cid=" + rest.PlaceID,
		"opening_hours":          map[string]any{"weekday_text": []string{"星期一: 11:00 – 21:00"}},
		"reviews": []map[string]any{
			{"author_name": "Lin", "rating": 5, "relative_time_description": "1 週前", "text": "好吃"},
		},
		"photos": []map[string]any{{"photo_reference": rest.PhotoReference}},
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	uid := userIDFrom(r.Context())
	s.mu.Lock()
	type row struct {
		rest Restaurant
		at   time.Time
	}
	rows := make([]row, 0, len(s.favorites[uid]))
	for rid, at := range s.favorites[uid] {
		rows = append(rows, row{rest: s.restaurants[rid], at: at})
	}
	s.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].at.Equal(rows[j].at) {
			return rows[i].rest.ID > rows[j].rest.ID
		}
		return rows[i].at.After(rows[j].at)
	})
	out := make([]map[string]any, 0, len(rows))
	for _, rw := range rows {
		out = append(out, restaurantJSON(rw.rest, true))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RestaurantID int64 `json:"restaurant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RestaurantID == 0 {
		writeError(w, http.StatusBadRequest, "Missing restaurant_id")
		return
	}
	uid := userIDFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.restaurants[in.RestaurantID]; !ok {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if s.favorites[uid] == nil {
		s.favorites[uid] = make(map[int64]time.Time)
	}
	if _, ok := s.favorites[uid][in.RestaurantID]; ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Restaurant already in favorites"})
		return
	}
	s.favorites[uid][in.RestaurantID] = s.opts.Now()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Restaurant added to favorites"})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Restaurant not in favorites")
		return
	}
	uid := userIDFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.favorites[uid][id]; !ok {
		writeError(w, http.StatusNotFound, "Restaurant not in favorites")
		return
	}
	delete(s.favorites[uid], id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Restaurant removed from favorites"})
}

func (s *Server) randomFavorite(w http.ResponseWriter, r *http.Request) {
	uid := userIDFrom(r.Context())
	s.mu.Lock()
	ids := make([]int64, 0, len(s.favorites[uid]))
	for id := range s.favorites[uid] {
		ids = append(ids, id)
	}
	var rest Restaurant
	if len(ids) > 0 {
		rest = s.restaurants[ids[rand.IntN(len(ids))]]
	}
	s.mu.Unlock()
	if len(ids) == 0 {
		writeError(w, http.StatusNotFound, "No favorites found")
		return
	}
	writeJSON(w, http.StatusOK, restaurantJSON(rest, true))
}

func withUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

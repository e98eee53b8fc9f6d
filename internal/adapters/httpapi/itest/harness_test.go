package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/foodswipe/foodswipe-edge/internal/adapters/httpapi"
	memclock "github.com/foodswipe/foodswipe-edge/internal/adapters/memory/clock"
	memsessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/memory/sessionstore"
	postgres_testutil "github.com/foodswipe/foodswipe-edge/internal/adapters/postgres/testutil"
	pgsessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/postgres/sessionstore"
	redissessionstore "github.com/foodswipe/foodswipe-edge/internal/adapters/redis/sessionstore"
	"github.com/foodswipe/foodswipe-edge/internal/adapters/remoteapi"
	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/app/discovery"
	"github.com/foodswipe/foodswipe-edge/internal/app/photos"
	"github.com/foodswipe/foodswipe-edge/internal/platform/fakeapi"
	sessionstoreport "github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendRedis    backend = "redis"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "redis":
		return []backend{backendRedis}
	case "all":
		return []backend{backendMemory, backendPostgres, backendRedis}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|redis|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	fake    *fakeapi.Server
	clk     *memclock.ManualClock
	store   sessionstoreport.Store
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Now().UTC().Truncate(time.Second))
	fake := fakeapi.New(fakeapi.Options{Now: clk.Now})
	api := httptest.NewServer(fake.Handler())
	t.Cleanup(api.Close)

	var store sessionstoreport.Store
	switch b {
	case backendPostgres:
		store = pgsessionstore.NewStore(postgres_testutil.OpenMigratedPool(t))
	case backendRedis:
		redisURL := os.Getenv("TEST_REDIS_URL")
		if redisURL == "" {
			t.Skip("TEST_REDIS_URL not set; skipping redis itest")
		}
		client, err := redissessionstore.Open(context.Background(), redisURL)
		if err != nil {
			t.Fatalf("redis open: %v", err)
		}
		t.Cleanup(func() { _ = client.Close() })
		store = redissessionstore.NewStore(client, redissessionstore.Options{Prefix: "itest:" + t.Name() + ":"})
	case backendMemory:
		store = memsessionstore.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	remote, err := remoteapi.New(api.URL, remoteapi.Options{Credentials: account.NewCredentials(store)})
	if err != nil {
		t.Fatalf("remoteapi.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httpapi.NewServer(
		photos.NewLoader(remote, clk, logger),
		account.NewService(remote.Auth(), store, clk, 24*time.Hour),
		discovery.NewService(remote.Places(), remote.Restaurants(), remote.Favorites()),
		clk,
	)
	srv.Cookies = httpapi.CookieConfig{Secure: false}

	edge := httptest.NewServer(httpapi.NewRouter(srv, logger))
	t.Cleanup(edge.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := edge.Client()
	client.Jar = jar

	return &testServer{baseURL: edge.URL, client: client, fake: fake, clk: clk, store: store}
}

// sessionID returns the sid cookie the client currently holds, or "".
func (s *testServer) sessionID(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(s.baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range s.client.Jar.Cookies(u) {
		if c.Name == httpapi.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) do(t *testing.T, method string, path string, body any, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any) (int, []byte, http.Header) {
	t.Helper()
	return s.do(t, method, path, body, map[string]string{"Accept": "application/json"})
}

type errorResponse struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
		RequestId string         `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) errorResponse {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	return got
}

func requireHeader(t *testing.T, h http.Header, key, want string) {
	t.Helper()
	if got := h.Get(key); got != want {
		t.Fatalf("header %s=%q want %q", key, got, want)
	}
}

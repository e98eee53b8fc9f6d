package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foodswipe/foodswipe-edge/internal/platform/fakeapi"
)

// Dev-only stand-in for the remote restaurant API.
//
// Serves seeded restaurants, HS256 tokens and generated PNG photos so the edge
// can run locally without the real backend. Set PHOTO_FAIL=cached|standard|both
// to make the photo endpoints return 502.

func main() {
	port := getenv("PORT", "5000")
	secret := getenv("SECRET", "dev-secret")
	ttl := getenvDuration("TTL", 24*time.Hour)

	fake := fakeapi.New(fakeapi.Options{Secret: []byte(secret), TokenTTL: ttl})
	switch getenv("PHOTO_FAIL", "") {
	case "cached":
		fake.SetPhotoFailures(true, false)
	case "standard":
		fake.SetPhotoFailures(false, true)
	case "both":
		fake.SetPhotoFailures(true, true)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", fake.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("devapi listening on :%s (ttl=%s)", port, ttl)
	log.Fatal(srv.ListenAndServe())
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

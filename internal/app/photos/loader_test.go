package photos

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	memclock "github.com/foodswipe/foodswipe-edge/internal/adapters/memory/clock"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/photofetch"
)

type fakeFetcher struct {
	ok    map[string][]byte
	calls []string
}

func (f *fakeFetcher) FetchPhoto(_ context.Context, u string) (photofetch.Photo, error) {
	f.calls = append(f.calls, u)
	b, ok := f.ok[u]
	if !ok {
		return photofetch.Photo{}, errors.New("status 502")
	}
	return photofetch.Photo{URL: u, ContentType: "image/png", Data: b}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func newTestLoader(f photofetch.Fetcher) *Loader {
	clk := memclock.NewManualClock(time.Unix(1700000000, 0).UTC())
	return NewLoader(f, clk, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoader_FallbackThenSuccess(t *testing.T) {
	t.Parallel()

	fallback := PhotoURL(EndpointFallback, sampleRef, 400)
	f := &fakeFetcher{ok: map[string][]byte{fallback: pngBytes(t, 40, 30)}}
	res, err := newTestLoader(f).Load(context.Background(), sampleRef, 400, 1024)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.State.Phase != PhaseLoaded || res.Placeholder {
		t.Fatalf("state=%+v placeholder=%v", res.State, res.Placeholder)
	}
	if len(f.calls) != 2 || f.calls[0] != PhotoURL(EndpointPrimary, sampleRef, 400) || f.calls[1] != fallback {
		t.Fatalf("calls=%v", f.calls)
	}
	if res.State.Size != (Dimensions{Width: 40, Height: 30}) {
		t.Fatalf("size=%+v", res.State.Size)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0].Err, ErrPrimaryFetchFailed) {
		t.Fatalf("failures=%+v", res.Failures)
	}
	if res.Err() != nil {
		t.Fatalf("Err()=%v, want nil", res.Err())
	}
}

func TestLoader_AllFail_Placeholder(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	res, err := newTestLoader(f).Load(context.Background(), sampleRef, 400, 375)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Placeholder || res.State.Phase != PhaseFailed {
		t.Fatalf("state=%+v placeholder=%v", res.State, res.Placeholder)
	}
	if !errors.Is(res.Err(), ErrFallbackFetchFailed) {
		t.Fatalf("Err()=%v", res.Err())
	}
	if len(f.calls) != 2 {
		t.Fatalf("calls=%v, want exactly 2", f.calls)
	}
	if res.Photo.ContentType != "image/png" || len(res.Photo.Data) == 0 {
		t.Fatalf("placeholder photo missing")
	}
	if res.Width != 300 {
		t.Fatalf("width=%d want 300", res.Width)
	}
}

func TestLoader_InvalidReference_NoFetch(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	res, err := newTestLoader(f).Load(context.Background(), domain.PhotoReference("ab"), 400, 1024)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("calls=%v, want none", f.calls)
	}
	if !errors.Is(res.Err(), ErrInvalidReference) || !res.Placeholder {
		t.Fatalf("res=%+v", res)
	}
}

func TestLoader_UndecodableImageStillLoaded(t *testing.T) {
	t.Parallel()

	primary := PhotoURL(EndpointPrimary, sampleRef, 400)
	f := &fakeFetcher{ok: map[string][]byte{primary: []byte("RIFF....WEBPVP8 ")}}
	res, err := newTestLoader(f).Load(context.Background(), sampleRef, 400, 1024)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.State.Phase != PhaseLoaded || res.State.Size.Known() {
		t.Fatalf("state=%+v", res.State)
	}
}

func TestLoader_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader(&fakeFetcher{}).Load(ctx, sampleRef, 400, 1024)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	clockport "github.com/foodswipe/foodswipe-edge/internal/ports/out/clock"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/photofetch"
)

// Outcome records a failed attempt and its cause.
type Outcome struct {
	Attempt LoadAttempt
	Err     error
}

type Result struct {
	State LoadState
	// Photo holds the fetched image, or the placeholder when State is Failed.
	Photo       photofetch.Photo
	Placeholder bool
	Width       int

	Attempts []LoadAttempt
	Failures []Outcome
	Trace    []TraceEntry
}

// Err returns the terminal failure, if any.
func (r Result) Err() error { return r.State.Reason.Err() }

// Loader resolves photos for one request at a time by driving a Resolver against a
// Fetcher. Each Load uses a fresh Resolver.
type Loader struct {
	fetcher photofetch.Fetcher
	clk     clockport.Clock
	log     *slog.Logger
}

func NewLoader(fetcher photofetch.Fetcher, clk clockport.Clock, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fetcher: fetcher, clk: clk, log: logger}
}

// Load resolves ref for the given requested width and viewport. Terminal failures are
// reported through Result (with the placeholder image), not as an error; the only
// error returned is the context's.
func (l *Loader) Load(ctx context.Context, ref domain.PhotoReference, maxWidth, viewport int) (Result, error) {
	rs := NewResolver(l.clk, viewport)
	var out Result

	for a := rs.Set(ref, maxWidth); a != nil; {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		out.Attempts = append(out.Attempts, *a)

		p, err := l.fetcher.FetchPhoto(ctx, a.URL)
		if err == nil {
			rs.Succeed(*a, decodeDimensions(p.Data))
			out.Photo = p
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		out.Failures = append(out.Failures, Outcome{Attempt: *a, Err: attemptError(a.Kind, err)})
		l.log.DebugContext(ctx, "photo attempt failed",
			"endpoint", a.Kind.String(),
			"url", a.URL,
			"error", err,
		)
		a, _ = rs.Fail(*a)
	}

	out.State = rs.State()
	out.Width = rs.Width()
	out.Trace = rs.Trace()
	if out.State.Phase == PhaseFailed {
		out.Photo = Placeholder()
		out.Placeholder = true
		l.log.InfoContext(ctx, "photo unavailable, serving placeholder",
			"reference", ref.Short(8),
			"reason", out.State.Reason.String(),
			"attempts", len(out.Attempts),
		)
	} else if out.State.Size.Anomalous() {
		l.log.WarnContext(ctx, "photo loaded with anomalous size",
			"url", out.State.URL,
			"width", out.State.Size.Width,
			"height", out.State.Size.Height,
		)
	}
	return out, nil
}

func attemptError(kind EndpointKind, err error) error {
	switch kind {
	case EndpointPrimary:
		return fmt.Errorf("%w: %w", ErrPrimaryFetchFailed, err)
	case EndpointFallback:
		return fmt.Errorf("%w: %w", ErrFallbackFetchFailed, err)
	default:
		return fmt.Errorf("%w: %w", ErrFullyQualifiedFetchFailed, err)
	}
}

func decodeDimensions(b []byte) Dimensions {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return UnknownDimensions
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}
}

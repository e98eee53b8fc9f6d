package photos

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	clockport "github.com/foodswipe/foodswipe-edge/internal/ports/out/clock"
)

const (
	PrimaryPhotoPath  = "/api/places/cached-photo"
	FallbackPhotoPath = "/api/places/photo"

	// maxRetries bounds fallback attempts after the first one.
	maxRetries = 1
)

// EndpointKind identifies which photo source an attempt targets.
type EndpointKind int

const (
	EndpointPrimary EndpointKind = iota + 1
	EndpointFallback
	// EndpointDirect is a fully-qualified reference used verbatim.
	EndpointDirect
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointPrimary:
		return "primary"
	case EndpointFallback:
		return "fallback"
	case EndpointDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Phase is the coarse state of a resolver.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// LoadAttempt is one image fetch. It is only meaningful to the resolver generation
// that issued it.
type LoadAttempt struct {
	ID         string
	Generation uint64
	Kind       EndpointKind
	URL        string
	StartedAt  time.Time
}

// Dimensions are the intrinsic size of a decoded image. Negative values mean unknown.
type Dimensions struct {
	Width  int
	Height int
}

var UnknownDimensions = Dimensions{Width: -1, Height: -1}

func (d Dimensions) Known() bool { return d.Width >= 0 && d.Height >= 0 }

// Anomalous reports a decoded image of at most 1x1 pixels.
func (d Dimensions) Anomalous() bool {
	return d.Known() && (d.Width <= 1 || d.Height <= 1)
}

// LoadState is the resolver's current state. Only the fields relevant to Phase are set.
type LoadState struct {
	Phase Phase

	// Attempt is the in-flight attempt while Loading.
	Attempt *LoadAttempt

	// URL and Size describe the image once Loaded.
	URL  string
	Size Dimensions

	// Reason explains a Failed state.
	Reason FailureReason
}

// Resolver maps a photo reference and display width to at most two successive fetch
// attempts. It is driven by callbacks: the caller performs each returned attempt and
// reports the outcome with Succeed or Fail.
//
// Outcomes are applied only when they belong to the attempt currently in flight; a
// callback for an attempt superseded by Set or Resize is ignored.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	clk          clockport.Clock
	newAttemptID func() string

	viewport int
	ref      domain.PhotoReference
	maxWidth int
	width    int

	generation uint64
	retries    int
	state      LoadState
	trace      Trace
}

func NewResolver(clk clockport.Clock, viewport int) *Resolver {
	return &Resolver{
		clk:          clk,
		newAttemptID: uuid.NewString,
		viewport:     viewport,
	}
}

// Set resets the resolver for a new reference and requested maximum width, and returns
// the first attempt to perform, or nil when the resolver went straight to Failed.
func (r *Resolver) Set(ref domain.PhotoReference, maxWidth int) *LoadAttempt {
	r.ref = ref
	r.maxWidth = maxWidth
	return r.restart()
}

// Resize records a new viewport width. When the effective width changes for a
// reference that has been Set, the resolver restarts and returns the new first attempt.
func (r *Resolver) Resize(viewport int) *LoadAttempt {
	r.viewport = viewport
	w := domain.EffectiveWidth(viewport, r.maxWidth)
	if r.generation == 0 || w == r.width {
		r.width = w
		return nil
	}
	return r.restart()
}

func (r *Resolver) restart() *LoadAttempt {
	r.generation++
	r.retries = 0
	r.trace.reset()
	r.state = LoadState{Phase: PhaseIdle}
	r.width = domain.EffectiveWidth(r.viewport, r.maxWidth)

	if !r.ref.Valid() {
		if r.ref == "" {
			r.note("invalid photo reference: empty")
		} else {
			r.note("invalid photo reference: %s", r.ref)
		}
		r.state = LoadState{Phase: PhaseFailed, Reason: ReasonInvalidReference}
		return nil
	}
	if r.ref.FullyQualified() {
		r.note("using fully-qualified reference %s", r.ref.Short(15))
		return r.begin(EndpointDirect, string(r.ref))
	}
	r.note("loading photo %s at width %d", r.ref.Short(8), r.width)
	return r.begin(EndpointPrimary, PhotoURL(EndpointPrimary, r.ref, r.width))
}

func (r *Resolver) begin(kind EndpointKind, u string) *LoadAttempt {
	a := &LoadAttempt{
		ID:         r.newAttemptID(),
		Generation: r.generation,
		Kind:       kind,
		URL:        u,
		StartedAt:  r.clk.Now(),
	}
	r.state = LoadState{Phase: PhaseLoading, Attempt: a}
	r.note("attempt %d via %s endpoint", r.retries+1, kind)
	return a
}

func (r *Resolver) current(a LoadAttempt) bool {
	return r.state.Phase == PhaseLoading &&
		r.state.Attempt != nil &&
		a.Generation == r.generation &&
		a.ID == r.state.Attempt.ID
}

// Succeed reports a successful load of a. It returns false when a is stale.
func (r *Resolver) Succeed(a LoadAttempt, size Dimensions) bool {
	if !r.current(a) {
		return false
	}
	r.note("loaded in %s", clockport.Since(r.clk, a.StartedAt))
	switch {
	case size.Anomalous():
		r.note("warning: anomalous image size %dx%d", size.Width, size.Height)
	case size.Known():
		r.note("image size %dx%d", size.Width, size.Height)
	}
	r.state = LoadState{Phase: PhaseLoaded, URL: a.URL, Size: size}
	return true
}

// Fail reports a failed load of a. It returns the next attempt to perform (nil when
// the resolver is now Failed) and whether the report was applied; stale reports
// return (nil, false).
func (r *Resolver) Fail(a LoadAttempt) (*LoadAttempt, bool) {
	if !r.current(a) {
		return nil, false
	}
	r.note("load failed after %s, retries %d", clockport.Since(r.clk, a.StartedAt), r.retries)

	if a.Kind == EndpointDirect {
		r.note("fully-qualified reference failed, using placeholder")
		r.state = LoadState{Phase: PhaseFailed, Reason: ReasonFullyQualifiedFetchFailed}
		return nil, true
	}
	if a.Kind == EndpointPrimary && r.retries < maxRetries {
		r.retries++
		r.note("retrying via standard endpoint")
		return r.begin(EndpointFallback, PhotoURL(EndpointFallback, r.ref, r.width)), true
	}
	r.note("all attempts failed, using placeholder")
	r.state = LoadState{Phase: PhaseFailed, Reason: ReasonFallbackFetchFailed}
	return nil, true
}

// State returns the current state.
func (r *Resolver) State() LoadState {
	s := r.state
	if s.Attempt != nil {
		a := *s.Attempt
		s.Attempt = &a
	}
	return s
}

// Width is the effective width of the current generation.
func (r *Resolver) Width() int { return r.width }

// Trace returns the most recent diagnostic entries, oldest first.
func (r *Resolver) Trace() []TraceEntry { return r.trace.Entries() }

func (r *Resolver) note(format string, args ...any) {
	r.trace.add(r.clk.Now(), r.generation, format, args...)
}

// PhotoURL builds the places photo URL for an opaque reference.
// EndpointDirect returns the reference unchanged.
func PhotoURL(kind EndpointKind, ref domain.PhotoReference, width int) string {
	var path string
	switch kind {
	case EndpointPrimary:
		path = PrimaryPhotoPath
	case EndpointFallback:
		path = FallbackPhotoPath
	default:
		return string(ref)
	}
	return path + "?photoReference=" + encodeComponent(string(ref)) + "&maxwidth=" + strconv.Itoa(width)
}

// encodeComponent escapes s for use as a query value, encoding spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Candidate is one entry of a resolution plan.
type Candidate struct {
	Kind EndpointKind
	URL  string
}

// Plan lists, in order, the requests a resolver would issue for ref if every attempt
// failed. An invalid reference yields an empty plan.
func Plan(clk clockport.Clock, ref domain.PhotoReference, maxWidth, viewport int) []Candidate {
	r := NewResolver(clk, viewport)
	var out []Candidate
	for a := r.Set(ref, maxWidth); a != nil; a, _ = r.Fail(*a) {
		out = append(out, Candidate{Kind: a.Kind, URL: a.URL})
	}
	return out
}

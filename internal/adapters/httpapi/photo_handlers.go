package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/foodswipe/foodswipe-edge/internal/app/photos"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
)

type photoParams struct {
	ref      domain.PhotoReference
	maxWidth int
	viewport int
	debug    bool
}

func (s *Server) bindPhotoParams(w http.ResponseWriter, r *http.Request) (photoParams, bool) {
	var (
		ref      *string
		maxWidth *int
		viewport *int
		debug    *bool
	)
	if !bindQueryEither(w, r, &ref, "photoReference", "photoreference") ||
		!bindQuery(w, r, "maxwidth", &maxWidth) ||
		!bindQuery(w, r, "viewport", &viewport) ||
		!bindQuery(w, r, "debug", &debug) {
		return photoParams{}, false
	}

	p := photoParams{viewport: s.DefaultViewportWidth}
	if ref != nil {
		p.ref = domain.PhotoReference(*ref)
	}
	if maxWidth != nil {
		p.maxWidth = *maxWidth
	}
	if viewport != nil && *viewport > 0 {
		p.viewport = *viewport
	} else if v, ok := viewportHint(r); ok {
		p.viewport = v
	}
	p.debug = debug != nil && *debug
	return p, true
}

// GetPhoto serves the resolved photo, or the placeholder when every attempt failed.
// The response is always 200 so an image element never breaks; X-Photo-State tells the
// outcome apart.
func (s *Server) GetPhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := s.bindPhotoParams(w, r)
	if !ok {
		return
	}
	res, err := s.Photos.Load(r.Context(), p.ref, p.maxWidth, p.viewport)
	if err != nil {
		logging.FromContext(r.Context()).Debug("photo request abandoned", "err", err)
		return
	}
	if p.debug {
		writeJSON(w, http.StatusOK, photoDebugFromResult(res))
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.Photo.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(res.Photo.Data)))
	h.Set("Vary", "Sec-CH-Viewport-Width, Viewport-Width")
	h.Set("Accept-CH", "Sec-CH-Viewport-Width")
	h.Set("X-Photo-State", res.State.Phase.String())
	h.Set("X-Photo-Attempts", strconv.Itoa(len(res.Attempts)))
	if res.Placeholder {
		h.Set("X-Photo-Reason", res.State.Reason.String())
		h.Set("Cache-Control", "no-store")
	} else {
		h.Set("X-Photo-Source", res.State.URL)
		if n := len(res.Attempts); n > 0 {
			h.Set("X-Photo-Endpoint", res.Attempts[n-1].Kind.String())
		}
		h.Set("Cache-Control", "private, max-age=3600")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Photo.Data)
}

// GetPhotoPlan lists the URLs a photo request would try, in order, without fetching.
func (s *Server) GetPhotoPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.bindPhotoParams(w, r)
	if !ok {
		return
	}
	cands := photos.Plan(s.Clock, p.ref, p.maxWidth, p.viewport)
	out := PhotoPlan{
		Reference:  string(p.ref),
		Width:      domain.EffectiveWidth(p.viewport, p.maxWidth),
		Valid:      p.ref.Valid(),
		Candidates: make([]PhotoCandidate, 0, len(cands)),
	}
	for _, c := range cands {
		out.Candidates = append(out.Candidates, PhotoCandidate{Endpoint: c.Kind.String(), URL: c.URL})
	}
	writeJSON(w, http.StatusOK, out)
}

type PhotoCandidate struct {
	Endpoint string `json:"endpoint"`
	URL      string `json:"url"`
}

type PhotoPlan struct {
	Reference  string           `json:"reference"`
	Width      int              `json:"width"`
	Valid      bool             `json:"valid"`
	Candidates []PhotoCandidate `json:"candidates"`
}

type PhotoAttempt struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	URL       string    `json:"url"`
	StartedAt time.Time `json:"startedAt"`
	Error     string    `json:"error,omitempty"`
}

type PhotoDebug struct {
	State       string         `json:"state"`
	Reason      string         `json:"reason,omitempty"`
	URL         string         `json:"url,omitempty"`
	Width       int            `json:"width"`
	ImageWidth  *int           `json:"imageWidth,omitempty"`
	ImageHeight *int           `json:"imageHeight,omitempty"`
	Placeholder bool           `json:"placeholder"`
	Attempts    []PhotoAttempt `json:"attempts"`
	Trace       []string       `json:"trace"`
}

func photoDebugFromResult(res photos.Result) PhotoDebug {
	out := PhotoDebug{
		State:       res.State.Phase.String(),
		URL:         res.State.URL,
		Width:       res.Width,
		Placeholder: res.Placeholder,
		Attempts:    make([]PhotoAttempt, 0, len(res.Attempts)),
		Trace:       make([]string, 0, len(res.Trace)),
	}
	if res.State.Reason != photos.ReasonNone {
		out.Reason = res.State.Reason.String()
	}
	if sz := res.State.Size; res.State.Phase == photos.PhaseLoaded && sz.Known() {
		out.ImageWidth, out.ImageHeight = &sz.Width, &sz.Height
	}
	failed := make(map[string]string, len(res.Failures))
	for _, f := range res.Failures {
		failed[f.Attempt.ID] = f.Err.Error()
	}
	for _, a := range res.Attempts {
		out.Attempts = append(out.Attempts, PhotoAttempt{
			ID:        a.ID,
			Endpoint:  a.Kind.String(),
			URL:       a.URL,
			StartedAt: a.StartedAt,
			Error:     failed[a.ID],
		})
	}
	for _, e := range res.Trace {
		out.Trace = append(out.Trace, e.String())
	}
	return out
}

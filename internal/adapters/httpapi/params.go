package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// bindQuery binds an optional form-style query parameter into dest (a pointer to a
// pointer, left nil when the parameter is absent).
func bindQuery(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid query parameter", map[string]any{name: err.Error()})
		return false
	}
	return true
}

// bindQueryEither binds the first present of names. The remote API accepts both
// camelCase and lowercase spellings of some parameters, and so does the edge.
func bindQueryEither(w http.ResponseWriter, r *http.Request, dest **string, names ...string) bool {
	for _, n := range names {
		if !bindQuery(w, r, n, dest) {
			return false
		}
		if *dest != nil {
			return true
		}
	}
	return true
}

func bindPathInt64(w http.ResponseWriter, r *http.Request, name string, dest *int64) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid path parameter", map[string]any{name: err.Error()})
		return false
	}
	return true
}

// viewportHint reads the client viewport width from client hint headers.
func viewportHint(r *http.Request) (int, bool) {
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		v := strings.TrimSpace(r.Header.Get(h))
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

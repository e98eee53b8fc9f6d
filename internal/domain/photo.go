package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinPhotoReferenceLength is the shortest opaque reference ever submitted to an endpoint.
	MinPhotoReferenceLength = 5

	// DefaultPhotoWidth applies when the caller does not request a maximum width.
	DefaultPhotoWidth = 400

	// NarrowViewportBreakpoint is the viewport width below which the narrow ceiling applies.
	NarrowViewportBreakpoint = 640

	NarrowWidthCeiling = 300
	WideWidthCeiling   = 600
)

// PhotoReference is an opaque token identifying a remotely hosted photo, or a
// fully-qualified photo URL that is used verbatim.
type PhotoReference string

// Valid reports whether the reference may be submitted to any endpoint.
func (r PhotoReference) Valid() bool {
	return len(r) >= MinPhotoReferenceLength
}

// FullyQualified reports whether the reference is already a complete photo URL
// (an API-relative path or an absolute http(s) URL).
func (r PhotoReference) FullyQualified() bool {
	s := string(r)
	return strings.HasPrefix(s, "/api/") || strings.HasPrefix(s, "http")
}

// Short returns at most n bytes of the reference, cut at a rune boundary, for logs
// and traces.
func (r PhotoReference) Short(n int) string {
	if len(r) <= n {
		return string(r)
	}
	for n > 0 && !utf8.RuneStart(r[n]) {
		n--
	}
	return string(r[:n]) + "..."
}

// EffectiveWidth clamps the requested maximum width to the viewport-driven ceiling.
//
// requestedMax <= 0 means "unspecified" and becomes DefaultPhotoWidth.
// viewport <= 0 means "unknown" and is treated as a wide viewport.
func EffectiveWidth(viewport, requestedMax int) int {
	if requestedMax <= 0 {
		requestedMax = DefaultPhotoWidth
	}
	ceiling := WideWidthCeiling
	if viewport > 0 && viewport < NarrowViewportBreakpoint {
		ceiling = NarrowWidthCeiling
	}
	return min(ceiling, requestedMax)
}

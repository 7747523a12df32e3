// Package htmlsanitize strips or constrains HTML in user-entered free
// text before it is stored. Event descriptions and incident narratives
// arrive from the field as arbitrary text and are rendered back in
// several portals, so everything is sanitized on the way in.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Plain strips all HTML, returning plain text with entities decoded.
func Plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Rich keeps the usual user-generated-content subset (links, emphasis,
// lists) and removes everything else.
func Rich(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Package sanitize cleans free text that arrives from the club platform API
// before it is rendered. Event descriptions are authored in the platform's
// inline WYSIWYG editor and arrive as HTML; titles, locations, holiday names
// and server messages must be plain text.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
		// Editor output carries alignment classes; everything else is stripped.
		richPolicy.AllowAttrs("class").OnElements("p", "span", "div")
		richPolicy.RequireNoFollowOnLinks(true)
		richPolicy.AddTargetBlankToFullyQualifiedLinks(true)

		plainPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, plainPolicy
}

// HTML sanitizes editor-produced HTML, keeping safe formatting and dropping
// scripts, event handlers and javascript: URLs. The result may be written
// unescaped into a page.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	rich, _ := policies()
	return rich.Sanitize(input)
}

// Text strips every tag and collapses whitespace, for strings that must
// render as a single plain line (titles, tooltips, upstream messages).
// Entities are decoded again, so the result needs normal escaping on output.
func Text(input string) string {
	if input == "" {
		return ""
	}
	_, plain := policies()
	return strings.Join(strings.Fields(html.UnescapeString(plain.Sanitize(input))), " ")
}

package layouts

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/clubcal/internal/middleware"
	"github.com/keyxmakerx/clubcal/internal/templates/markup"
)

// Base is the HTML document shell every full page renders inside. The CSRF
// token goes in a meta tag where the page script hands it to HTMX.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		b.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.Raw(`<meta name="csrf-token"`).Attr("content", middleware.CSRFTokenFromContext(ctx)).Raw(">")
		b.Raw("<title>").Text(title).Raw(" · Club Calendar</title>")
		b.Raw(`<link rel="stylesheet" href="/static/css/clubcal.css">`,
			`<script src="/static/vendor/htmx.min.js" defer></script>`,
			`<script src="/static/js/clubcal.js" defer></script>`,
			`</head><body>`)

		b.Raw(`<header class="site-header"><a class="site-title" href="/calendar">Club Calendar</a>`)
		if !IsSignedIn(ctx) {
			if login := LoginURL(ctx); login != "" {
				b.Raw(`<a class="site-login"`).URLAttr("href", login).Raw(">Sign in</a>")
			}
		}
		b.Raw(`</header><main class="site-main">`)
		b.Child(ctx, body)
		b.Raw(`</main></body></html>`)
		return b.Err()
	})
}

// ErrorPage renders a full-page error.
func ErrorPage(code int, message string) templ.Component {
	return Base("Error", ErrorFragment(code, message))
}

// ErrorFragment renders an error panel for HTMX swaps.
func ErrorFragment(code int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		b.Raw(`<div class="error-panel" role="alert"><h1>`).Text(strconv.Itoa(code)).Raw("</h1><p>").
			Text(message).Raw("</p></div>")
		return b.Err()
	})
}

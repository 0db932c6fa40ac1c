// Package markup is a small HTML builder for templ components written in
// Go. It escapes text and attribute values with templ's escaper and keeps
// the first write error so components can return it once at the end.
package markup

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Writer accumulates HTML into an io.Writer.
type Writer struct {
	w   io.Writer
	err error
}

// New wraps w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error.
func (b *Writer) Err() error {
	return b.err
}

// Raw writes trusted markup verbatim.
func (b *Writer) Raw(parts ...string) *Writer {
	for _, p := range parts {
		if b.err != nil {
			return b
		}
		_, b.err = io.WriteString(b.w, p)
	}
	return b
}

// Text writes escaped text content.
func (b *Writer) Text(s string) *Writer {
	return b.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (b *Writer) Attr(name, value string) *Writer {
	return b.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// URLAttr writes an href-like attribute, replacing unsafe schemes.
func (b *Writer) URLAttr(name, url string) *Writer {
	return b.Attr(name, string(templ.URL(url)))
}

// Flag writes a boolean attribute when on.
func (b *Writer) Flag(name string, on bool) *Writer {
	if on {
		b.Raw(" ", name)
	}
	return b
}

// Class writes a class attribute from the non-empty names.
func (b *Writer) Class(names ...string) *Writer {
	kept := names[:0:0]
	for _, n := range names {
		if n != "" {
			kept = append(kept, n)
		}
	}
	return b.Attr("class", strings.Join(kept, " "))
}

// Child renders a nested component in place.
func (b *Writer) Child(ctx context.Context, c templ.Component) *Writer {
	if b.err == nil && c != nil {
		b.err = c.Render(ctx, b.w)
	}
	return b
}

// If returns name when on, or "". Useful with Class.
func If(on bool, name string) string {
	if on {
		return name
	}
	return ""
}

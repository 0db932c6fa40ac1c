package markup

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_EscapesTextAndAttributes(t *testing.T) {
	var sb strings.Builder
	w := New(&sb)

	w.Raw("<p").Attr("title", `a "quoted" <b>`).Class("x", "", If(true, "y"), If(false, "z")).Raw(">").
		Text("<script>alert(1)</script>").Raw("</p>")

	require.NoError(t, w.Err())
	assert.Equal(t, `<p title="a &#34;quoted&#34; &lt;b&gt;" class="x y">&lt;script&gt;alert(1)&lt;/script&gt;</p>`, sb.String())
}

func TestWriter_URLAttrRejectsJavascript(t *testing.T) {
	var sb strings.Builder
	New(&sb).URLAttr("href", "javascript:alert(1)")

	assert.NotContains(t, sb.String(), "javascript:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriter_KeepsFirstError(t *testing.T) {
	w := New(failingWriter{})
	w.Raw("a").Text("b").Child(context.Background(), templ.ComponentFunc(func(context.Context, io.Writer) error {
		t.Fatal("child rendered after a write error")
		return nil
	}))

	assert.EqualError(t, w.Err(), "closed")
}

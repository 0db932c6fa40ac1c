package layouts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestInjector_StoresLoginURL(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	var got string
	err := Injector("https://id.example.com/login")(func(c echo.Context) error {
		got = LoginURL(c.Request().Context())
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, "https://id.example.com/login", got)
}

func TestBase_SignInLink(t *testing.T) {
	ctx := context.WithValue(context.Background(), keyLoginURL, "https://id.example.com/login")

	anon := render(t, ctx, Base("Club calendar", templ.NopComponent))
	assert.Contains(t, anon, `href="https://id.example.com/login"`)
	assert.Contains(t, anon, "<title>Club calendar · Club Calendar</title>")

	signedIn := render(t, WithSignedIn(ctx, true), Base("Club calendar", templ.NopComponent))
	assert.NotContains(t, signedIn, "Sign in")
}

func TestErrorFragment_EscapesMessage(t *testing.T) {
	out := render(t, context.Background(), ErrorFragment(403, "<b>no</b>"))

	assert.Contains(t, out, "<h1>403</h1>")
	assert.Contains(t, out, "&lt;b&gt;no&lt;/b&gt;")
}

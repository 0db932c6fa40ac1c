package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader carries the request ID inbound, outbound, and upstream.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps caller-supplied IDs so they cannot bloat logs.
const maxRequestIDLength = 64

const contextKeyRequestID = "request_id"

type requestIDCtxKey struct{}

// RequestID returns middleware that assigns each request an ID. A sane
// inbound X-Request-ID is reused so traces line up with the reverse proxy.
// The ID is echoed in the response and stored in both the Echo context and
// the request's context.Context, where the upstream client picks it up.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}

			c.Set(contextKeyRequestID, id)
			c.Response().Header().Set(RequestIDHeader, id)
			c.SetRequest(req.WithContext(WithRequestID(req.Context(), id)))

			return next(c)
		}
	}
}

// GetRequestID returns the request ID from the Echo context.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestIDFromContext returns the request ID stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

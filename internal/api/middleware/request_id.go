package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Caller-supplied ids longer than this are replaced.
const maxRequestIDLen = 128

type requestIDKey struct{}

type principalKey struct{}

type principal struct {
	subject string
	roles   []string
}

// RequestID reuses the caller's X-Request-ID or generates a UUIDv7, and
// echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = newRequestID()
		}
		c.Set("request_id", rid)
		c.Header(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Next()
	}
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// GetRequestID returns the id RequestID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// SetSubjectContext records the authenticated token subject and roles.
func SetSubjectContext(ctx context.Context, subject string, roles []string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal{subject: subject, roles: roles})
}

// GetSubject returns the token subject, or "" for anonymous requests.
func GetSubject(ctx context.Context) string {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.subject
}

func GetRoles(ctx context.Context) []string {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.roles
}

package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/servify/backend/internal/auth"
)

// SessionResolver resolves a session from a request's header set.
// Satisfied by *auth.Service; stubbed in tests.
type SessionResolver interface {
	ResolveSession(ctx context.Context, headers http.Header) (*auth.Session, error)
}

const sessionLoaderKey = "servify.session_loader"

// sessionLoader memoizes one session resolution for the lifetime of a
// single request. Each request gets its own loader, so nothing is shared
// across concurrent requests; sync.Once covers concurrent call sites
// within one request.
type sessionLoader struct {
	once     sync.Once
	resolver SessionResolver

	session *auth.Session
	err     error
}

// Session installs a lazy per-request session loader. The lookup runs
// only when a handler first calls GetSession and the result is discarded
// with the request.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionLoaderKey, &sessionLoader{resolver: resolver})
		c.Next()
	}
}

// GetSession returns the request's session, resolving it on first call
// and memoizing for the remainder of the request. Returns (nil, nil)
// when no credentials are presented or the middleware is not installed.
func GetSession(c *gin.Context) (*auth.Session, error) {
	v, ok := c.Get(sessionLoaderKey)
	if !ok {
		return nil, nil
	}
	loader := v.(*sessionLoader)

	loader.once.Do(func() {
		loader.session, loader.err = loader.resolver.ResolveSession(c.Request.Context(), c.Request.Header)
	})
	return loader.session, loader.err
}

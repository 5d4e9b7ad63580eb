package web

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/web/middleware"
)

// WithRequestMetadata adds client IP, User-Agent and the negotiated locale
// to ctx for submission logging.
func WithRequestMetadata(ctx context.Context, r *http.Request, tag language.Tag) context.Context {
	ctx = core.ContextWithClientIP(ctx, middleware.ClientIP(r)) // RemoteAddr already rewritten by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	ctx = core.ContextWithLocale(ctx, tag.String())
	return ctx
}

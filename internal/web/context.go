package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/leaddesk/internal/core"
	mw "github.com/JonMunkholm/leaddesk/internal/web/middleware"
)

// importContext tags the request context with the client IP so the import
// run records where it came from. RemoteAddr has already been resolved by
// TrustedRealIP.
func importContext(r *http.Request) context.Context {
	return core.ContextWithSource(r.Context(), mw.ClientIP(r))
}

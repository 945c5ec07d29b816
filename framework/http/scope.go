package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/container"
)

type requestKey struct{}

// RequestScope opens one container request scope per inbound request and
// ends it when the handler returns, even if it panics. The scope id is a
// fresh UUID, echoed back in the given response header when one is set.
//
//	router.Middleware(gohttp.RequestScope(c, "X-Request-ID", log))
func RequestScope(c *container.Container, header string, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			ctx := context.WithValue(r.Context(), requestKey{}, r)

			scoped, err := c.BeginRequestScope(ctx, id)
			if err != nil {
				log.Error("request scope not opened",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Error(err),
				)
				NewResponse(w).Error(http.StatusServiceUnavailable, "Service Unavailable.")
				return
			}

			defer func() {
				if err := c.EndRequestScope(id); err != nil {
					log.Warn("request scope teardown",
						zap.String("scope_id", id),
						zap.Error(err),
					)
				}
			}()

			if header != "" {
				w.Header().Set(header, id)
			}
			next.ServeHTTP(w, r.WithContext(scoped))
		})
	}
}

// RequestFrom returns the *http.Request that opened the request scope
// attached to ctx. Request-scoped factories use it to read the inbound
// request.
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok
}

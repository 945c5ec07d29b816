// Package weblog demonstrates a request-scoped logger shared by every
// component that handles the same request.
package weblog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/container"
	gohttp "github.com/km-arc/go-beans/framework/http"
)

// RequestLogger tags every line with an id unique to the current request.
// One instance exists per request scope; it is closed when the scope ends.
type RequestLogger struct {
	ID string

	mu         sync.Mutex
	requestURL string
	lines      []string
	log        *zap.Logger
}

// NewRequestLogger is the request-scoped factory body. It picks up the
// request URL when the scope was opened by the HTTP middleware.
func NewRequestLogger(ctx context.Context, log *zap.Logger) *RequestLogger {
	l := &RequestLogger{ID: uuid.NewString(), log: log}
	if r, ok := gohttp.RequestFrom(ctx); ok {
		l.requestURL = r.URL.String()
	}
	if sc := container.ScopeFrom(ctx); sc != nil {
		l.log = l.log.With(zap.String("scope_id", sc.ID))
	}
	l.log.Debug("request logger created", zap.String("uuid", l.ID))
	return l
}

// SetRequestURL overrides the URL captured at creation.
func (l *RequestLogger) SetRequestURL(u string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requestURL = u
}

// Log writes one line tagged with the logger's id and request URL.
func (l *RequestLogger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, message)
	l.log.Info(message,
		zap.String("uuid", l.ID),
		zap.String("request_url", l.requestURL),
	)
}

// Lines returns what has been logged so far.
func (l *RequestLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Close runs when the request scope ends.
func (l *RequestLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Debug("request logger closed",
		zap.String("uuid", l.ID),
		zap.String("request_url", l.requestURL),
		zap.Int("lines", len(l.lines)),
	)
	return nil
}

package async

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine with a context detached from the
// caller's cancellation. The logger and Sentry hub of ctx are carried over.
// Errors and panics are logged, never returned.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		bgCtx = sentry.SetHubOnContext(bgCtx, hub.Clone())
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", err)
		}
	}()
}

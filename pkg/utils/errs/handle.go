package errs

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// Handle logs err and, if a Sentry client is configured, reports it.
// Use it at the top of goroutines where nobody receives the error.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	logger.Error("operation failed",
		"error", err,
		"kind", types.KindOf(err),
	)

	hub := sentry.CurrentHub().Clone()
	if hub.Client() == nil {
		return
	}

	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("kind", string(types.KindOf(err)))
	})
	if evID := hub.CaptureException(err); evID != nil {
		logger.Info("error reported to sentry", "event_id", *evID)
	}
}

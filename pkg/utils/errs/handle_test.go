package errs_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/utils/errs"
)

func TestHandle(t *testing.T) {
	t.Run("logs error with kind", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := ctxlog.With(context.Background(), logger)

		errs.Handle(ctx, goerr.New("connection refused", goerr.T(types.ErrTagTransport)))

		gt.String(t, buf.String()).Contains("operation failed")
		gt.String(t, buf.String()).Contains("connection refused")
		gt.String(t, buf.String()).Contains("kind=transport")
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := ctxlog.With(context.Background(), logger)

		errs.Handle(ctx, nil)
		gt.Equal(t, buf.String(), "")
	})
}

package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// Close closes an io.Closer and logs the error, if any. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("Failed to close", slog.Any("error", err))
	}
}

// ReadAll drains rc and closes it. limit caps the number of bytes read; a
// body larger than limit is an error rather than being truncated.
func ReadAll(ctx context.Context, rc io.ReadCloser, limit int64) ([]byte, error) {
	defer Close(ctx, rc)

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read body")
	}
	if int64(len(data)) > limit {
		return nil, goerr.New("body exceeds size limit", goerr.V("limit", limit))
	}
	return data, nil
}

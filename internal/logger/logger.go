// Package logger provides structured logging functionality
// using the Uber zap logging library. It also hooks the resty HTTP client
// so every request to the backend leaves a log line.
package logger

import (
	"errors"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Log is a global SugaredLogger instance from the zap logging library.
// It is a no-op logger until Init is called.
var Log = zap.NewNop().Sugar()

// Init initializes the global logger at the given level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries to the output.
// It should be called when shutting down to ensure all logs are written.
// Stderr attached to a pipe or a terminal cannot be fsynced; those errors are dropped.
func Sync() error {
	err := Log.Sync()
	if err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		return err
	}

	return nil
}

// WithRestyLogging installs request logging hooks on the resty client.
// Each request gets a fresh X-Request-ID unless the caller already set one.
func WithRestyLogging(client *resty.Client) *resty.Client {
	client.OnBeforeRequest(func(_ *resty.Client, request *resty.Request) error {
		if request.Header.Get(RequestIDHeader) == "" {
			request.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, response *resty.Response) error {
		Log.Infoln(
			"uri", response.Request.URL,
			"method", response.Request.Method,
			"status", response.StatusCode(),
			"duration", response.Time(),
			"size", response.Size(),
			"request_id", response.Request.Header.Get(RequestIDHeader),
		)
		return nil
	})

	client.OnError(func(request *resty.Request, err error) {
		Log.Debugln(
			"request failed",
			"uri", request.URL,
			"method", request.Method,
			"request_id", request.Header.Get(RequestIDHeader),
			zap.Error(err),
		)
	})

	return client
}

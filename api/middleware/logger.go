package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

// Logger writes one access line per request once it completes. Server
// errors are logged at error level, client errors at warn.
func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := log.WithFields(logrus.Fields{
				"req_id":  ContextRequestID(ctx),
				"method":  r.Method,
				"path":    r.URL.Path,
				"remote":  r.RemoteAddr,
				"status":  status,
				"bytes":   lw.BytesWritten(),
				"latency": time.Since(start).String(),
			})

			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request completed")
			case status >= http.StatusBadRequest:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}

			return err
		}
		return h
	}
	return m
}

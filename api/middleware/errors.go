package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors renders the error returned by the handler chain. Errors without an
// attached response become a bare 500 so internals never leak to clients.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := logrus.Fields{"req_id": ContextRequestID(ctx)}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			entry := log.WithFields(fields).WithError(err)

			body, status, ok := weberr.Response(err)
			if !ok {
				entry.Error("request failed")
				er := weberr.ErrorResponse{
					Error: http.StatusText(http.StatusInternalServerError),
				}
				return web.Respond(ctx, w, er, http.StatusInternalServerError)
			}

			if status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Debug("request rejected")
			}
			return web.Respond(ctx, w, body, status)
		}
		return h
	}
	return m
}

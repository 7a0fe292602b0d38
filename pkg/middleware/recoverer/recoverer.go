package recoverer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/url-redirector/pkg/middleware"
	"github.com/vadimbarashkov/url-redirector/pkg/response"
)

// New recovers panics from next and answers with a 500 JSON error body.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func New(logger *slog.Logger) middleware.Middleware {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}

				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error(
					"something went wrong, panic occurred",
					slog.Group(op, slog.Any("err", rvr)),
				)

				w.Header().Set("Content-Type", "application/json")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse(rvr))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

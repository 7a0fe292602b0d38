package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
	"github.com/vadimbarashkov/url-redirector/internal/service"
	"github.com/vadimbarashkov/url-redirector/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// codeParam returns the decoded {code} path segment, or "" on routes
// without one. chi routes on r.URL.RawPath when it is set, and only then is
// the segment still escaped.
func codeParam(r *http.Request) string {
	code := chi.URLParam(r, "code")
	if r.URL.RawPath == "" {
		return code
	}

	if decoded, err := url.PathUnescape(code); err == nil {
		return decoded
	}

	return code
}

func handleResolve(resolver Resolver) http.HandlerFunc {
	const op = "api.http.handleResolve"

	return func(w http.ResponseWriter, r *http.Request) {
		resp := resolver.Resolve(r.Context(), service.Request{
			Method: r.Method,
			Code:   codeParam(r),
		})

		if resp.Err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": resp.Err})
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}

		if resp.Body == nil {
			w.WriteHeader(resp.StatusCode)
			return
		}

		render.Status(r, resp.StatusCode)
		render.JSON(w, r, resp.Body)
	}
}

type linkStatsResponse struct {
	Code         string           `json:"code"`
	OriginalURL  string           `json:"originalUrl"`
	TotalVisits  int64            `json:"totalVisits"`
	VisitsByDate map[string]int64 `json:"visitsByDate"`
}

func toLinkStatsResponse(link *models.Link) linkStatsResponse {
	visits := link.VisitsByDate
	if visits == nil {
		visits = map[string]int64{}
	}

	return linkStatsResponse{
		Code:         link.Code,
		OriginalURL:  link.OriginalURL,
		TotalVisits:  link.TotalVisits,
		VisitsByDate: visits,
	}
}

func handleGetLinkStats(resolver Resolver) http.HandlerFunc {
	const op = "api.http.handleGetLinkStats"

	return func(w http.ResponseWriter, r *http.Request) {
		code := codeParam(r)

		link, err := resolver.Stats(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse(code))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse("failed to read link stats"))
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkStatsResponse(link))
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
	"github.com/vadimbarashkov/url-redirector/pkg/response"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, X-Amz-Date, Authorization, X-Api-Key, X-Amz-Security-Token, X-Amz-User-Agent",
	"Access-Control-Max-Age":       "86400",
}

// CORSHeaders returns a fresh copy of the fixed CORS header set attached to
// every response.
func CORSHeaders() map[string]string {
	return maps.Clone(corsHeaders)
}

// Request is the part of an incoming HTTP request the resolver needs.
type Request struct {
	Method string
	Code   string
}

// Response is a fully decided HTTP response. Body is nil for responses
// without a payload.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       *response.Response
	// Err is the failure behind a 500 response, kept for request logging.
	Err error
}

func errorResponse(statusCode int, body *response.Response, err error) Response {
	headers := CORSHeaders()
	headers["Content-Type"] = "application/json"

	return Response{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
		Err:        err,
	}
}

// Resolve handles one redirect request end to end.
//
// Preflight requests are answered before anything else. A valid code that
// resolves yields a 302 to the stored URL, after which the visit counters
// are updated; failures of those updates never change the response.
func (r *Resolver) Resolve(ctx context.Context, req Request) (resp Response) {
	const op = "service.Resolver.Resolve"

	defer func() {
		if rvr := recover(); rvr != nil {
			err := fmt.Errorf("%s: panic: %v", op, rvr)
			r.logger.Error("panic while resolving short code", slog.Any("err", err))
			resp = errorResponse(http.StatusInternalServerError, response.ServerErrorResponse(rvr), err)
		}
		r.recorder.ObserveResolution(resp.StatusCode)
	}()

	if strings.EqualFold(req.Method, http.MethodOptions) {
		r.logger.Debug("handling preflight request")
		return Response{StatusCode: http.StatusOK, Headers: CORSHeaders()}
	}

	code := req.Code
	if err := r.validate.Var(strings.TrimSpace(code), "required"); err != nil {
		r.logger.Debug("code parameter is missing")
		return errorResponse(http.StatusBadRequest, response.CodeRequiredResponse(), nil)
	}

	r.logger.Debug("looking up short code", slog.String("code", code))

	originalURL, err := r.store.OriginalURL(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrLinkNotFound) {
			r.logger.Info("short code not found", slog.String("code", code))
			return errorResponse(http.StatusNotFound, response.NotFoundResponse(code), nil)
		}

		wrapped := fmt.Errorf("%s: failed to look up short code: %w", op, err)
		r.logger.Error("failed to resolve short code", slog.String("code", code), slog.Any("err", wrapped))
		return errorResponse(http.StatusInternalServerError, response.ServerErrorResponse(rootCause(err)), wrapped)
	}

	headers := CORSHeaders()
	headers["Location"] = originalURL
	headers["Cache-Control"] = "no-cache"
	resp = Response{StatusCode: http.StatusFound, Headers: headers}

	r.logger.Info("redirecting", slog.String("code", code), slog.String("location", originalURL))

	r.recordVisit(context.WithoutCancel(ctx), code)

	return resp
}

// recordVisit runs both counter updates in order. Their errors are logged
// and dropped.
func (r *Resolver) recordVisit(ctx context.Context, code string) {
	defer func() {
		if rvr := recover(); rvr != nil {
			r.recorder.IncAnalyticsFailure("panic")
			r.logger.Error("panic while recording visit", slog.String("code", code), slog.Any("panic", rvr))
		}
	}()

	if err := r.IncrementTotal(ctx, code); err != nil {
		r.recorder.IncAnalyticsFailure("total")
		r.logger.Warn("failed to increment total visits", slog.String("code", code), slog.Any("err", err))
	}

	if err := r.IncrementForToday(ctx, code); err != nil {
		r.recorder.IncAnalyticsFailure("by_date")
		r.logger.Warn("failed to increment visits by date", slog.String("code", code), slog.Any("err", err))
	}
}

// Stats returns the stored link with its visit counters.
func (r *Resolver) Stats(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.Resolver.Stats"

	link, err := r.store.Link(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	return link, nil
}

// rootCause strips the op context that stores add while wrapping, leaving
// the error reported by the underlying client.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

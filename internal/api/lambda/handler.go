// Package lambda adapts API Gateway HTTP API (payload v2) events to the
// redirect resolver.
package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/vadimbarashkov/url-redirector/internal/service"
	"github.com/vadimbarashkov/url-redirector/pkg/response"
)

type Resolver interface {
	Resolve(ctx context.Context, req service.Request) service.Response
}

type Handler struct {
	resolver Resolver
	logger   *slog.Logger
}

func NewHandler(resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger,
	}
}

// Handle resolves one API Gateway event. It never returns an error: every
// failure is already expressed as an HTTP response.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	const op = "api.lambda.Handler.Handle"

	resp := h.resolver.Resolve(ctx, service.Request{
		Method: event.RequestContext.HTTP.Method,
		Code:   event.PathParameters["code"],
	})

	if resp.Err != nil {
		h.logger.Error("request failed",
			slog.String("op", op),
			slog.String("request_id", event.RequestContext.RequestID),
			slog.Any("err", resp.Err),
		)
	}

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}

	if resp.Body != nil {
		body, err := json.Marshal(resp.Body)
		if err != nil {
			return serverError(fmt.Errorf("%s: failed to encode body: %w", op, err)), nil
		}
		out.Body = string(body)
	}

	return out, nil
}

func serverError(err error) events.APIGatewayV2HTTPResponse {
	headers := service.CORSHeaders()
	headers["Content-Type"] = "application/json"

	body, _ := json.Marshal(response.ServerErrorResponse(err))

	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    headers,
		Body:       string(body),
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/vadimbarashkov/url-redirector/internal/app"
	"github.com/vadimbarashkov/url-redirector/internal/config"

	apilambda "github.com/vadimbarashkov/url-redirector/internal/api/lambda"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("failed to start", slog.Any("err", err))
		os.Exit(1)
	}
}

// run builds the resolver once per execution environment; warm invocations
// reuse it and its store connections.
func run(logger *slog.Logger) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	resolver, _, err := app.NewResolver(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	lambda.Start(apilambda.NewHandler(resolver, logger).Handle)

	return nil
}

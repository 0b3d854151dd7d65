package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/caronaexpress/pkg/bootstrap"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/handlers/websockets"
	"github.com/chris/caronaexpress/pkg/logging"
)

// Serves the $connect, $disconnect and $default routes of the API Gateway
// WebSocket API. A Lambda authorizer on $connect supplies the account id.
func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	app, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}

	h := websockets.NewHandler(app.Store, logger)
	lambda.Start(h.Route)
}

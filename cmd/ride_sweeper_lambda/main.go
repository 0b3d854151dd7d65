package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/caronaexpress/pkg/bootstrap"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/logging"
)

// Sweeper closes rides whose departure has passed.
type Sweeper interface {
	CloseDeparted(ctx context.Context, loc *time.Location) (int, error)
}

type handler struct {
	rides    Sweeper
	location *time.Location
	logger   *slog.Logger
}

// Handle is triggered by an EventBridge Schedule.
func (h *handler) Handle(ctx context.Context) error {
	h.logger.Info("sweeping departed rides", slog.String("timezone", h.location.String()))

	closed, err := h.rides.CloseDeparted(ctx, h.location)
	if err != nil {
		h.logger.Error("sweep failed", slog.Int("closed", closed), slog.Any("error", err))
		return err
	}

	h.logger.Info("sweep finished", slog.Int("closed", closed))
	return nil
}

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

	h := &handler{rides: app.Rides, location: cfg.RideTimezone, logger: logger}
	lambda.Start(h.Handle)
}

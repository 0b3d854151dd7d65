package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/caronaexpress/pkg/bootstrap"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/models"
)

// Settler credits or fails the deposit behind a payment.
type Settler interface {
	Settle(ctx context.Context, paymentRef string) (*models.Deposit, error)
}

// notification is a payment confirmation as queued by the gateway webhook.
// Both our own {"payment_ref": ...} shape and a forwarded Stripe event are accepted.
type notification struct {
	PaymentRef string `json:"payment_ref"`
	Data       *struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

func (n notification) ref() string {
	if n.PaymentRef != "" {
		return n.PaymentRef
	}
	if n.Data != nil {
		return n.Data.Object.ID
	}
	return ""
}

type handler struct {
	deposits Settler
	logger   *slog.Logger
}

// Handle settles every message in the batch. Messages that fail, including
// payments still pending at the provider, are reported back so SQS
// redelivers only those.
func (h *handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		logger := h.logger.With(slog.String("message_id", message.MessageId))
		if err := h.settle(ctx, message.Body, logger); err != nil {
			logger.Warn("deposit not settled, will retry", slog.Any("error", err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}

func (h *handler) settle(ctx context.Context, body string, logger *slog.Logger) error {
	var n notification
	if err := json.Unmarshal([]byte(body), &n); err != nil || n.ref() == "" {
		// Redelivering a malformed message cannot help.
		logger.Error("dropping unreadable payment notification", slog.Any("error", err))
		return nil
	}
	ref := n.ref()

	deposit, err := h.deposits.Settle(ctx, ref)
	switch {
	case errors.Is(err, ledger.ErrDepositNotFound):
		logger.Warn("no deposit for payment", slog.String("payment_ref", ref))
		return nil
	case err != nil:
		return fmt.Errorf("payment %s: %w", ref, err)
	}

	logger.Info("deposit settled",
		slog.String("deposit_id", deposit.ID),
		slog.String("account_id", deposit.AccountID),
		slog.String("status", string(deposit.Status)))
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

	// Initialize dependencies once per container.
	app, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}

	h := &handler{deposits: app.Deposits, logger: logger}
	lambda.Start(h.Handle)
}

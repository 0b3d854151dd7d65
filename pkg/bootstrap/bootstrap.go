// Package bootstrap builds the storage backend, the integrations and the
// domain services from a Config. Every binary wires itself through it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/caronaexpress/pkg/acceptance"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/geo"
	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/payments"
	"github.com/chris/caronaexpress/pkg/retry"
	"github.com/chris/caronaexpress/pkg/ride"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/chris/caronaexpress/pkg/storage/dynamodb"
	"github.com/chris/caronaexpress/pkg/storage/memory"
	"github.com/chris/caronaexpress/pkg/websockets"
	"github.com/redis/go-redis/v9"
)

// App holds everything a binary may need. Fields an integration did not
// configure are nil. Hub always exists; it carries client messages only when
// no API Gateway endpoint is configured.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	AWS      *aws.Config
	DynamoDB *awsdynamodb.Client
	Store    storage.Storage
	Catalog  *geo.Catalog
	Feed     events.ChangeFeed
	Hub      *websockets.Hub
	Events   events.Publisher
	Gateway  payments.Gateway

	Ledger     *ledger.Service
	Deposits   *ledger.Deposits
	Rides      *ride.Service
	Discovery  *discovery.Service
	Acceptance *acceptance.Workflow

	closers []func() error
}

// New wires the application described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if err := a.initAWS(ctx); err != nil {
		return nil, err
	}
	if err := a.initStore(); err != nil {
		return nil, err
	}
	if err := a.initCatalog(); err != nil {
		return nil, err
	}
	if err := a.initFeed(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initEvents(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.initGateway()
	a.initServices()
	return a, nil
}

// Close releases network clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LocalSockets reports whether client messages are delivered through Hub.
func (a *App) LocalSockets() bool {
	return a.Config.WebSocketAPIEndpoint == ""
}

func (a *App) needsAWS() bool {
	c := a.Config
	return c.StorageBackend == config.BackendDynamoDB || c.EventsQueueURL != "" || c.DepositsQueueURL != "" || c.WebSocketAPIEndpoint != ""
}

func (a *App) initAWS(ctx context.Context) error {
	if !a.needsAWS() {
		return nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}
	a.AWS = &cfg
	return nil
}

func (a *App) initStore() error {
	switch a.Config.StorageBackend {
	case config.BackendMemory:
		a.Logger.Warn("using in-memory storage; data is lost on exit")
		a.Store = memory.New()
	case config.BackendDynamoDB:
		a.DynamoDB = awsdynamodb.NewFromConfig(*a.AWS)
		a.Store = dynamodb.New(a.DynamoDB, DynamoDBTables(a.Config))
	default:
		return fmt.Errorf("unknown storage backend %q", a.Config.StorageBackend)
	}
	return nil
}

// DynamoDBTables converts the configured table names.
func DynamoDBTables(cfg *config.Config) dynamodb.Tables {
	return dynamodb.Tables{
		Accounts:    cfg.Tables.Accounts,
		Rides:       cfg.Tables.Rides,
		Ledger:      cfg.Tables.Ledger,
		Deposits:    cfg.Tables.Deposits,
		Connections: cfg.Tables.Connections,
	}
}

func (a *App) initCatalog() error {
	if a.Config.LocationsFile == "" {
		a.Catalog = geo.Default()
		return nil
	}
	catalog, err := geo.LoadCatalog(a.Config.LocationsFile)
	if err != nil {
		return err
	}
	a.Logger.Info("loaded location catalog", slog.String("file", a.Config.LocationsFile), slog.Int("places", catalog.Len()))
	a.Catalog = catalog
	return nil
}

func (a *App) initFeed(ctx context.Context) error {
	if a.Config.RedisAddr == "" {
		a.Feed = events.NewLocalFeed()
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr, Password: a.Config.RedisPassword})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", a.Config.RedisAddr, err)
	}
	a.Feed = events.NewRedisFeed(client, a.Config.RedisChannel)
	return nil
}

func (a *App) initEvents(ctx context.Context) error {
	var fanout events.Fanout

	if url := a.Config.EventsQueueURL; url != "" {
		fanout = append(fanout, events.NewSQSPublisher(sqs.NewFromConfig(*a.AWS), url))
	}

	a.Hub = websockets.NewHub()
	var sender websockets.Sender = a.Hub
	if endpoint := a.Config.WebSocketAPIEndpoint; endpoint != "" {
		apiSender, err := websockets.NewAPIGatewaySender(ctx, endpoint)
		if err != nil {
			return err
		}
		sender = apiSender
	}
	clients := websockets.NewPublisher(a.Store, sender, a.Logger)
	fanout = append(fanout, websockets.NewEventPublisher(clients, a.Store, a.Store))

	a.Events = fanout
	return nil
}

func (a *App) initGateway() {
	if a.Config.StripeAPIKey != "" {
		a.Gateway = payments.NewStripeGateway(a.Config.StripeAPIKey)
		return
	}
	a.Logger.Warn("STRIPE_API_KEY not set, using the payment sandbox")
	a.Gateway = payments.NewSandbox(false)
}

func (a *App) initServices() {
	cfg, logger := a.Config, a.Logger
	policy := retry.Policy{MaxAttempts: cfg.AcceptMaxAttempts, MaxBackoff: cfg.AcceptMaxBackoff}

	a.Ledger = ledger.NewService(a.Store,
		ledger.WithPublisher(a.Events),
		ledger.WithLogger(logger),
		ledger.WithRetryPolicy(policy),
		ledger.WithLimits(ledger.Limits{MinDeposit: cfg.DepositMin, MaxDeposit: cfg.DepositMax}))
	a.Deposits = ledger.NewDeposits(a.Ledger, a.Store, a.Gateway)
	a.Rides = ride.NewService(a.Store, a.Catalog,
		ride.WithPublisher(a.Events),
		ride.WithChangeFeed(a.Feed),
		ride.WithLogger(logger))
	a.Discovery = discovery.NewService(a.Store,
		discovery.WithChangeFeed(a.Feed),
		discovery.WithLogger(logger),
		discovery.WithPollInterval(cfg.WatchPollInterval))
	a.Acceptance = acceptance.New(a.Store,
		acceptance.WithPublisher(a.Events),
		acceptance.WithChangeFeed(a.Feed),
		acceptance.WithLogger(logger),
		acceptance.WithRetryPolicy(policy))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chris/caronaexpress/pkg/bootstrap"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/middleware"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage/dynamodb"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "caronactl",
		Short:        "Operate a CaronaExpress deployment",
		SilenceUsage: true,
	}
	root.AddCommand(newTablesCmd(), newAccountCmd(), newDepositCmd(), newRidesCmd(), newTokenCmd())
	return root
}

// withApp loads the configuration and wires the application for one command.
func withApp(cmd *cobra.Command, run func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := bootstrap.New(ctx, cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, "text"))
	if err != nil {
		return err
	}
	defer app.Close()
	return run(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTablesCmd() *cobra.Command {
	tables := &cobra.Command{Use: "tables", Short: "Manage DynamoDB tables"}
	tables.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create every table and index that does not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if app.DynamoDB == nil {
					return errors.New("tables create needs STORAGE_BACKEND=dynamodb")
				}
				created, err := dynamodb.CreateTables(ctx, app.DynamoDB, bootstrap.DynamoDBTables(app.Config))
				if err != nil {
					return err
				}
				for _, name := range created {
					fmt.Fprintln(cmd.OutOrStdout(), "created", name)
				}
				if len(created) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "all tables already exist")
				}
				return nil
			})
		},
	})
	return tables
}

func newAccountCmd() *cobra.Command {
	account := &cobra.Command{Use: "account", Short: "Inspect and fund accounts"}

	account.AddCommand(&cobra.Command{
		Use:   "show <account-id>",
		Short: "Print an account and its latest ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				acct, err := app.Ledger.Account(ctx, args[0])
				if err != nil {
					return err
				}
				entries, err := app.Ledger.History(ctx, args[0], 10)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"account": acct, "entries": entries})
			})
		},
	})

	var name, reference string
	credit := &cobra.Command{
		Use:   "credit <account-id> <amount>",
		Short: "Credit an account outside the payment gateway, opening it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.Ledger.EnsureAccount(ctx, args[0], name); err != nil {
					return err
				}
				if _, err := app.Ledger.Transfer(ctx, ledger.TransferRequest{
					To:          args[0],
					Amount:      amount,
					Kind:        models.EntryDeposit,
					Reference:   reference,
					Description: "Crédito manual",
				}); err != nil {
					return err
				}
				acct, err := app.Ledger.Account(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), acct)
			})
		},
	}
	credit.Flags().StringVar(&name, "name", "", "display name used if the account is opened")
	credit.Flags().StringVar(&reference, "reference", "", "reference stored on the ledger entry")
	account.AddCommand(credit)

	return account
}

func newDepositCmd() *cobra.Command {
	deposit := &cobra.Command{Use: "deposit", Short: "Work with gateway deposits"}
	deposit.AddCommand(&cobra.Command{
		Use:   "settle <payment-ref>",
		Short: "Ask the gateway about a payment and credit or fail its deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				d, err := app.Deposits.Settle(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	})
	return deposit
}

func newRidesCmd() *cobra.Command {
	rides := &cobra.Command{Use: "rides", Short: "Maintain rides"}
	rides.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Close every ride whose departure has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				closed, err := app.Rides.CloseDeparted(ctx, app.Config.RideTimezone)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "closed %d rides\n", closed)
				return nil
			})
		},
	})
	return rides
}

func newTokenCmd() *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)
	token := &cobra.Command{
		Use:   "token <account-id>",
		Short: "Sign a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET environment variable not set")
			}
			now := time.Now()
			signed, err := middleware.IssueToken([]byte(cfg.JWTSecret), args[0], name, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	token.Flags().StringVar(&name, "name", "", "display name carried in the token")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return token
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/devsu/transaction-service/internal/adapter/generator"
	"github.com/devsu/transaction-service/internal/adapter/http/dto"
	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/auth"
	"github.com/devsu/transaction-service/internal/infrastructure/config"
	"github.com/devsu/transaction-service/internal/infrastructure/postgres"
)

// runAPI executes fn against the API and prints its JSON response.
func runAPI(cmd *cobra.Command, opts *options, fn func(ctx context.Context, c *apiClient) (json.RawMessage, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	data, err := fn(ctx, newAPIClient(opts))
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), v)
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		accountType string
		clientID    string
		balance     string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an account for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid --balance %q: %w", balance, err)
			}
			req := dto.CreateAccountRequest{AccountType: accountType, ClientID: clientID, InitialBalance: &initial}
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodPost, "/api/v1/accounts", nil, req)
			})
		},
	}
	create.Flags().StringVar(&accountType, "type", "", "Account type (SAVINGS, CHECKING, Ahorro, Corriente)")
	create.Flags().StringVar(&clientID, "client", "", "Client identifier")
	create.Flags().StringVar(&balance, "balance", "0", "Initial balance")
	_ = create.MarkFlagRequired("type")
	_ = create.MarkFlagRequired("client")

	get := &cobra.Command{
		Use:   "get <account-number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, nil)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status <account-number> <true|false>",
		Short: "Activate or deactivate an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid status %q: expected true or false", args[1])
			}
			req := dto.ChangeStatusRequest{Active: &active}
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodPatch, "/api/v1/accounts/"+url.PathEscape(args[0])+"/status", nil, req)
			})
		},
	}

	cmd.AddCommand(create, get, status)
	return cmd
}

func movementsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Deposit, withdraw and list movements",
	}

	create := &cobra.Command{
		Use:   "create <account-number> <amount>",
		Short: "Register a movement; a negative amount is a withdrawal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			req := dto.CreateMovementRequest{AccountNumber: args[0], Amount: &amount}
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodPost, "/api/v1/movements", nil, req)
			})
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list <account-number>",
		Short: "List movements of an account between two dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"account_number": {args[0]}, "from": {from}, "to": {to}}
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodGet, "/api/v1/movements", q, nil)
			})
		},
	}
	addDateFlags(list, &from, &to)

	cmd.AddCommand(create, list)
	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report <client-id>",
		Short: "Account statement of a client for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"client_id": {args[0]}, "from": {from}, "to": {to}}
			return runAPI(cmd, opts, func(ctx context.Context, c *apiClient) (json.RawMessage, error) {
				return c.do(ctx, http.MethodGet, "/api/v1/reports", q, nil)
			})
		},
	}
	addDateFlags(cmd, &from, &to)
	return cmd
}

// addDateFlags registers --from and --to, defaulting to the current month.
func addDateFlags(cmd *cobra.Command, from, to *string) {
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cmd.Flags().StringVar(from, "from", first.Format(domain.DateLayout), "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", now.Format(domain.DateLayout), "Last day, inclusive (YYYY-MM-DD)")
}

func accountNumberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account-number",
		Short: "Generate or validate account numbers offline",
	}

	var count int
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate Luhn-valid account numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			gen := generator.NewLuhnAccountNumberGenerator()
			for i := 0; i < count; i++ {
				n, err := gen.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 1, "How many numbers to generate")

	validate := &cobra.Command{
		Use:   "validate <number>...",
		Short: "Check account numbers; exits non-zero if any is invalid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, n := range args {
				verdict := "valid"
				if !domain.ValidAccountNumber(n) {
					verdict = "invalid"
					invalid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n, verdict)
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid account number(s)", invalid)
			}
			return nil
		},
	}

	cmd.AddCommand(generate, validate)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
			return nil
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject  string
		role     string
		secret   string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an authenticated server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, duration).Generate(domain.Principal{
				Subject: subject,
				Role:    domain.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOperator), "Role: admin, operator or viewer")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().DurationVar(&duration, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

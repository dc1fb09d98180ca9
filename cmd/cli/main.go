package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "transactions-cli",
		Short:         "Transaction service CLI tool",
		Long:          `A command line interface for the transaction service: accounts, movements and statements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("TRANSACTIONS_URL", "http://localhost:8080"), "Base URL of the transaction service API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TRANSACTIONS_TOKEN"), "Bearer token for authenticated servers")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		movementsCmd(opts),
		reportCmd(opts),
		accountNumberCmd(),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"fmt"
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
		Use:           "tipledger-cli",
		Short:         "TipLedger CLI tool",
		Long:          `A command line interface for giving tips and inspecting balances through the TipLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("TIPLEDGER_URL", "http://localhost:8080"), "Base URL of the TipLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TIPLEDGER_TOKEN"), "Bearer token of the calling account")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		tipCmd(opts),
		accountCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/adapter/http/middleware"
	postgresRepo "github.com/lrcollege/tipledger/internal/adapter/repository/postgres"
	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/infrastructure/auth"
	"github.com/lrcollege/tipledger/internal/infrastructure/config"
	"github.com/lrcollege/tipledger/internal/infrastructure/postgres"
	"github.com/lrcollege/tipledger/internal/usecase"
)

const memoWidth = 32

func tipCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Give and list tips",
	}

	var memo, idempotencyKey string
	giveCmd := &cobra.Command{
		Use:   "give <to_account_id> <amount>",
		Short: "Tip another account from the token's account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			var headers map[string]string
			if idempotencyKey != "" {
				headers = map[string]string{middleware.IdempotencyKeyHeader: idempotencyKey}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var tip dto.TipResponse
			req := dto.GiveTipRequest{ToAccountID: to, Amount: args[1], Memo: memo}
			if err := newAPIClient(opts).do(ctx, http.MethodPost, "/api/v1/tips", headers, req, &tip); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tip)
		},
	}
	giveCmd.Flags().StringVar(&memo, "memo", "", "Optional message for the receiver")
	giveCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Replay-safe key for retries")

	getCmd := &cobra.Command{
		Use:   "get <tip_id>",
		Short: "Show a tip you sent or received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var tip dto.TipResponse
			if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/tips/"+url.PathEscape(args[0]), nil, nil, &tip); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tip)
		},
	}

	cmd.AddCommand(giveCmd, getCmd, listTipsCmd(opts, "sent"), listTipsCmd(opts, "received"))
	return cmd
}

func listTipsCmd(opts *options, direction string) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   direction,
		Short: "List tips you have " + direction,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			var page dto.TipListResponse
			path := "/api/v1/tips/" + direction + "?" + query.Encode()
			if err := newAPIClient(opts).do(ctx, http.MethodGet, path, nil, nil, &page); err != nil {
				return err
			}
			return printTips(cmd.OutOrStdout(), page.Tips)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of tips to skip")

	return cmd
}

func printTips(w io.Writer, tips []*dto.TipResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM\tTO\tAMOUNT\tMEMO\tCREATED")
	for _, t := range tips {
		memo := ""
		if t.Memo != nil {
			memo = truncate(*t.Memo, memoWidth)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, party(t.Sender), party(t.Receiver), t.Amount, memo, t.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func party(i domain.Identity) string {
	if i.Email == "" {
		return strconv.FormatInt(i.ID, 10)
	}
	return fmt.Sprintf("%d (%s)", i.ID, i.Email)
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the token's account and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var account dto.AccountResponse
			if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/accounts/me", nil, nil, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}

	cmd.AddCommand(meCmd, createAccountCmd())
	return cmd
}

// createAccountCmd seeds an account directly in DATABASE_URL. Accounts are
// otherwise owned by the user service.
func createAccountCmd() *cobra.Command {
	var input struct {
		email, firstName, lastName, role, balance string
	}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account in the database (development seeding)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := decimal.NewFromString(input.balance)
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidBalance, input.balance)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.DatabaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := usecase.NewAccountUseCase(postgresRepo.NewAccountRepository(pool), nil)
			account, err := uc.CreateAccount(cmd.Context(), usecase.CreateAccountInput{
				Email:          input.email,
				FirstName:      input.firstName,
				LastName:       input.lastName,
				Role:           domain.Role(input.role),
				OpeningBalance: balance,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.AccountFromDomain(account))
		},
	}
	cmd.Flags().StringVar(&input.email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&input.lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&input.role, "role", string(domain.RoleStudent), "student or teacher")
	cmd.Flags().StringVar(&input.balance, "balance", "0", "Opening balance")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var report dto.ConsistencyResponse
			if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/ledger/consistency", nil, nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts:      %d\n", report.AccountCount)
			fmt.Fprintf(out, "Total balance: %s\n", report.TotalBalance)
			fmt.Fprintf(out, "Tips:          %d (volume %s)\n", report.TipCount, report.TipVolume)

			if !report.Consistent {
				fmt.Fprintf(out, "Negative accounts: %d, invalid tips: %d\n", report.NegativeAccounts, report.InvalidTips)
				return fmt.Errorf("consistency check FAILED")
			}
			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

// tokenCmd mints a development token signed with JWT_SECRET.
func tokenCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token <account_id>",
		Short: "Mint a development JWT for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration).
				Generate(domain.Caller{AccountID: id, Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email claim")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	run := func(name string, fn func(databaseURL, migrationsPath string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "Run migrations " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if err := fn(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", name)
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", postgres.RunMigrations),
		run("down", postgres.RunMigrationsDown),
	)
	return cmd
}

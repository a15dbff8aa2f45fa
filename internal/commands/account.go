package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/teller/internal/activity"
	"github.com/cleared-dev/teller/internal/id"
	"github.com/cleared-dev/teller/internal/model"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Open and inspect accounts",
	}
	cmd.AddCommand(newAccountOpenCommand(opts))
	cmd.AddCommand(newAccountShowCommand(opts))
	return cmd
}

func newAccountOpenCommand(opts *rootOptions) *cobra.Command {
	var (
		number   string
		dni      string
		acctType string
		currency string
		balance  string
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an account for a registered client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := id.ParseAccountNumber(number)
			if err != nil {
				return err
			}
			nationalID, err := id.ParseNationalID(dni)
			if err != nil {
				return err
			}
			at, ok := model.ParseAccountType(acctType)
			if !ok {
				return fmt.Errorf("unknown account type %q", acctType)
			}
			cur, ok := model.ParseCurrency(currency)
			if !ok {
				return fmt.Errorf("unknown currency %q", currency)
			}
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}

			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			acct := &model.Account{Number: n, Type: at, Currency: cur, Balance: bal}
			if err := e.accounts.OpenAccount(acct, nationalID); err != nil {
				return err
			}

			e.record(activity.Entry{
				Operation:     activity.OpAccountOpened,
				NationalID:    nationalID,
				AccountNumber: n,
				Details:       acct.Product().String(),
			}, fmt.Sprintf("account: Open %d for %s", n, id.FormatNationalID(nationalID)))

			fmt.Fprintf(cmd.OutOrStdout(), "Opened account %d (%s) for client %s\n",
				n, acct.Product(), id.FormatNationalID(nationalID))
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "account number (required)")
	cmd.Flags().StringVar(&dni, "dni", "", "owner's national ID (required)")
	cmd.Flags().StringVar(&acctType, "type", "", "CAJA_AHORRO or CUENTA_CORRIENTE (required)")
	cmd.Flags().StringVar(&currency, "currency", "", "PESOS, DOLARES, EUROS or BITCOIN (required)")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")
	for _, f := range []string{"number", "dni", "type", "currency"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newAccountShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show NUMBER",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := id.ParseAccountNumber(args[0])
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			acct, ok, err := e.accounts.FindByID(n)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("account %d not found", n)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account:  %d\n", acct.Number)
			fmt.Fprintf(out, "Product:  %s\n", acct.Product())
			fmt.Fprintf(out, "Balance:  %s\n", acct.Balance.StringFixed(2))
			if !acct.OpenedAt.IsZero() {
				fmt.Fprintf(out, "Opened:   %s\n", acct.OpenedAt.Format(dateLayout))
			}
			if owner := acct.OwnerID(); owner != 0 {
				fmt.Fprintf(out, "Owner:    %s\n", id.FormatNationalID(owner))
			}
			return nil
		},
	}
}

func newProductsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the products the bank offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			for _, p := range e.accounts.Catalog().Products() {
				fmt.Fprintf(out, "%-16s %s\n", p.Type, p.Currency)
			}
			return nil
		},
	}
}

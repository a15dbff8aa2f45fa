package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/teller/internal/activity"
	"github.com/cleared-dev/teller/internal/id"
	"github.com/cleared-dev/teller/internal/model"
)

const dateLayout = "2006-01-02"

func newClientCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Register and inspect clients",
	}
	cmd.AddCommand(newClientRegisterCommand(opts))
	cmd.AddCommand(newClientShowCommand(opts))
	return cmd
}

func newClientRegisterCommand(opts *rootOptions) *cobra.Command {
	var (
		dni        string
		firstName  string
		lastName   string
		birthDate  string
		personType string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nationalID, err := id.ParseNationalID(dni)
			if err != nil {
				return err
			}
			born, err := time.Parse(dateLayout, birthDate)
			if err != nil {
				return fmt.Errorf("invalid birth date %q: want YYYY-MM-DD", birthDate)
			}
			pt, ok := model.ParsePersonType(personType)
			if !ok {
				return fmt.Errorf("unknown person type %q", personType)
			}

			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			c := &model.Client{
				NationalID: nationalID,
				FirstName:  firstName,
				LastName:   lastName,
				BirthDate:  born,
				PersonType: pt,
			}
			if err := e.clients.Register(c); err != nil {
				return err
			}

			e.record(activity.Entry{
				Operation:  activity.OpClientRegistered,
				NationalID: nationalID,
				Details:    c.FullName(),
			}, fmt.Sprintf("client: Register %s", id.FormatNationalID(nationalID)))

			fmt.Fprintf(cmd.OutOrStdout(), "Registered client %s (%s)\n", id.FormatNationalID(nationalID), c.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&dni, "dni", "", "national ID (required)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name (required)")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "birth date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&personType, "person-type", string(model.PersonTypeNatural), "PERSONA_FISICA or PERSONA_JURIDICA")
	for _, f := range []string{"dni", "first-name", "last-name", "birth-date"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newClientShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show DNI",
		Short: "Show a client and their accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nationalID, err := id.ParseNationalID(args[0])
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.clients.FindByNationalID(nationalID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client:      %s\n", c.FullName())
			fmt.Fprintf(out, "DNI:         %s\n", id.FormatNationalID(c.NationalID))
			fmt.Fprintf(out, "Birth date:  %s\n", c.BirthDate.Format(dateLayout))
			fmt.Fprintf(out, "Person type: %s\n", c.PersonType)

			if len(c.Accounts) == 0 {
				fmt.Fprintln(out, "Accounts:    none")
				return nil
			}
			fmt.Fprintln(out, "Accounts:")
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "  NUMBER\tTYPE\tCURRENCY\tBALANCE")
			for _, a := range c.Accounts {
				fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", a.Number, a.Type, a.Currency, a.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

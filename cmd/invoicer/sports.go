package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gdnc/invoice-automation/internal/invoice"
	"github.com/gdnc/invoice-automation/internal/registration"
)

func newSportsCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		noSend bool
	)

	cmd := &cobra.Command{
		Use:   "sports",
		Short: "Issue and send an invoice for every sports registrant",
		Long: `Read the registrations workbook (one sheet per sport), group the teams by
registrant e-mail and issue one invoice per registrant, strictly one after the
other. Each invoice is mailed before the next one is generated.`,
		Example: `  invoicer sports
  invoicer sports --file data/sports_registrations_2025-06-20.xlsx --no-send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, "sports", true)
			if err != nil {
				return err
			}
			defer a.Close()

			if file == "" {
				file = a.cfg.Registrations.File
			}
			rows, err := registration.NewReader(a.logger).Load(file, a.cfg.Registrations.Sheets)
			if err != nil {
				return err
			}
			registrants, err := registration.Sanitize(rows)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sender := a.deliverer()
			if noSend {
				sender = nil
			} else if err := a.probeMail(ctx); err != nil {
				return err
			}

			batch := invoice.NewBatch(a.generator, sender, a.runs, a.cfg.ToComposer(), a.logger)
			result, runErr := batch.Run(ctx, registrants)

			out := cmd.OutOrStdout()
			for _, o := range result.Outcomes {
				switch {
				case o.Err != nil:
					fmt.Fprintf(out, "FAILED  %s: %v\n", o.Registrant.Payer.Email, o.Err)
				case o.DeliveryErr != nil:
					fmt.Fprintf(out, "UNSENT  %s %s: %v\n", o.Result.Artifact.InvoiceNumber, o.Registrant.Payer.Email, o.DeliveryErr)
				default:
					fmt.Fprintf(out, "OK      %s %s CHF %s\n", o.Result.Artifact.InvoiceNumber, o.Registrant.Payer.Email, o.Result.Artifact.Total)
				}
			}
			fmt.Fprintf(out, "Run %s: %d generated, %d failed\n", result.RunID, result.Generated(), result.Failed())
			return runErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "registrations workbook (defaults to registrations.file)")
	cmd.Flags().BoolVar(&noSend, "no-send", false, "generate and record without e-mailing")
	return cmd
}

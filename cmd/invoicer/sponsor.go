package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/gdnc/invoice-automation/internal/interfaces/http"
	"github.com/gdnc/invoice-automation/internal/invoice"
	"github.com/gdnc/invoice-automation/internal/models"
)

func newSponsorCmd(root *rootOptions) *cobra.Command {
	var (
		requestPath string
		send        bool
	)

	cmd := &cobra.Command{
		Use:   "sponsor",
		Short: "Issue one sponsor invoice from a JSON request file",
		Long: `Issue one sponsor invoice. The request file holds the payer, up to five
order lines and an optional comment, in the same shape as POST /api/v1/invoices.`,
		Example: `  invoicer sponsor --request acme.json
  invoicer sponsor --request acme.json --send

  # acme.json
  {
    "payer": {"company": "ACME SA", "title": "Madame", "first_name": "Anne",
              "last_name": "Rochat", "address": "Rue du Lac 1", "postcode": "1436",
              "city": "Chamblon", "phone": "+41791234567", "email": "anne@acme.ch"},
    "lines": [
      {"product": "Sponsor Or", "quantity": 1},
      {"description": "Tente 3x3", "quantity": 2, "price": "99.50"}
    ],
    "comment": "contrat signé le 02.03"
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(requestPath)
			if err != nil {
				return fmt.Errorf("failed to read request: %w", err)
			}
			var req httpapi.InvoiceRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to parse request %s: %w", requestPath, err)
			}
			selections, err := httpapi.ToSelections(req.Lines)
			if err != nil {
				return err
			}

			a, err := newApp(root, "sponsor", send)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if send {
				if err := a.probeMail(ctx); err != nil {
					return err
				}
			}

			res, err := a.generator.Generate(ctx, invoice.Request{
				Kind:       models.PayerSponsor,
				Payer:      req.Payer,
				Selections: selections,
				Comment:    req.Comment,
			})
			if err != nil {
				return err
			}
			printResult(cmd, res)

			if send {
				if a.sender == nil {
					return fmt.Errorf("invoice %s issued but mail delivery is disabled", res.Artifact.InvoiceNumber)
				}
				msg := a.cfg.ToComposer().Sponsor(req.Payer, res.Artifact.InvoiceNumber, res.Attachment(), time.Now())
				if err := a.sender.Deliver(ctx, res.Artifact.InvoiceNumber, "", msg); err != nil {
					return err
				}
				a.logger.Info("Sponsor invoice sent", zap.String("invoice_number", res.Artifact.InvoiceNumber))
				fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s\n", req.Payer.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "JSON request file")
	cmd.Flags().BoolVar(&send, "send", false, "e-mail the invoice to the sponsor")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func printResult(cmd *cobra.Command, res *invoice.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Invoice %s: CHF %s\n", res.Artifact.InvoiceNumber, res.Artifact.Total)
	fmt.Fprintf(out, "  document: %s\n", res.Artifact.DocumentPath)
	if res.Artifact.PDFPath != "" {
		fmt.Fprintf(out, "  pdf:      %s\n", res.Artifact.PDFPath)
	}
	if res.ConversionErr != nil {
		fmt.Fprintf(out, "  warning:  conversion failed: %v\n", res.ConversionErr)
	}
	if res.JournalErr != nil {
		fmt.Fprintf(out, "  warning:  numbering journal not updated: %v\n", res.JournalErr)
	}
}

package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
)

var version = "1.0.0"

type rootOptions struct {
	configPath string
	envFile    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "invoicer",
		Short: "Generate, record and send sponsoring and sports registration invoices",
		Long: `invoicer fills the invoice templates from a product catalog, numbers every
invoice from the ledger workbook, converts it to PDF and records it.

Sponsor invoices are issued one at a time (from a request file or the local
form served by "invoicer serve"). Sports registration invoices are issued in
one sequential batch from the registrations workbook.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env first so viper sees the credentials
			if err := gotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with credentials")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write *_DEBUG artifacts into a separate debug ledger")

	root.AddCommand(
		newSponsorCmd(opts),
		newSportsCmd(opts),
		newNextNumberCmd(opts),
		newQuoteCmd(opts),
		newLedgerCmd(opts),
		newServeCmd(opts),
	)
	return root
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNextNumberCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Print the number the next invoice will carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, "next-number", false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.generator.NextNumber()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.String())
			return nil
		},
	}
}

func newLedgerCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the invoice ledger",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check that every recorded invoice number is well formed, unique and increasing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, "ledger-verify", false)
			if err != nil {
				return err
			}
			defer a.Close()

			issues, err := a.ledger.Verify()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintf(out, "row %d: %s: %v\n", issue.Row, issue.Number, issue.Err)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%s: %d numbering issue(s)", a.ledger.Path(), len(issues))
			}
			fmt.Fprintf(out, "%s: ok\n", a.ledger.Path())
			return nil
		},
	})
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	httpapi "github.com/gdnc/invoice-automation/internal/interfaces/http"
	"github.com/gdnc/invoice-automation/internal/models"
)

func newQuoteCmd(root *rootOptions) *cobra.Command {
	var (
		kind   string
		custom []string
	)

	cmd := &cobra.Command{
		Use:   "quote [PRODUCT=QTY]...",
		Short: "Price an order without issuing an invoice",
		Example: `  invoicer quote "Sponsor Or=1" "Panneau publicitaire terrain=2"
  invoicer quote --custom "Tente 3x3=2@99.50"
  invoicer quote --kind sports "Pétanque=3"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseLineArgs(args, custom)
			if err != nil {
				return err
			}
			selections, err := httpapi.ToSelections(lines)
			if err != nil {
				return err
			}

			a, err := newApp(root, "quote", false)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.generator.Quote(kindFlag(kind), selections)
			if err != nil {
				return err
			}

			q := o.Quote()
			out := cmd.OutOrStdout()
			for _, l := range q.Lines {
				fmt.Fprintf(out, "%d. %-50s %3d x %10s = %10s\n", l.Index, l.Description, l.Quantity, l.UnitPrice, l.LineTotal)
			}
			fmt.Fprintf(out, "Total CHF %s\n", q.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "sponsor", "catalog to price against: sponsor or sports")
	cmd.Flags().StringArrayVar(&custom, "custom", nil, "custom line DESCRIPTION=QTY@PRICE (repeatable)")
	return cmd
}

// parseLineArgs turns "NAME=QTY" catalog args and "DESC=QTY@PRICE" custom args into form lines
func parseLineArgs(catalogArgs, customArgs []string) ([]httpapi.LineRequest, error) {
	var lines []httpapi.LineRequest
	for _, arg := range catalogArgs {
		name, qty, ok := cutLast(arg, "=")
		if !ok {
			return nil, fmt.Errorf("catalog line %q: expected PRODUCT=QTY", arg)
		}
		lines = append(lines, httpapi.LineRequest{Product: name, Quantity: httpapi.FormValue(qty)})
	}
	for _, arg := range customArgs {
		desc, rest, ok := cutLast(arg, "=")
		if !ok {
			return nil, fmt.Errorf("custom line %q: expected DESCRIPTION=QTY@PRICE", arg)
		}
		qty, price, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("custom line %q: expected DESCRIPTION=QTY@PRICE", arg)
		}
		lines = append(lines, httpapi.LineRequest{
			Description: desc,
			Quantity:    httpapi.FormValue(qty),
			Price:       httpapi.FormValue(price),
		})
	}
	return lines, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func kindFlag(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "sports", "registrant":
		return models.PayerRegistrant
	default:
		return models.PayerSponsor
	}
}

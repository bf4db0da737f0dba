package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/dealdesk/internal/model"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [deal.json]",
	Short: "Analyze a deal's projected cash flow and returns",
	Long:  "Reads a deal specification from a JSON file (or stdin with -) and prints monthly cash flow, NOI, cap rate, cash-on-cash return, DSCR, and the strategy-specific price metrics.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deal, err := readDeal(args[0])
		if err != nil {
			return err
		}

		report := buildReport(deal)
		if analyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "Strategy:             %s\n", report.Strategy)
		p.Fprintf(cmd.OutOrStdout(), "Gross monthly income: $%.2f\n", report.GrossMonthlyIncome)
		p.Fprintf(cmd.OutOrStdout(), "Monthly expenses:     $%.2f\n", report.MonthlyExpenses)
		p.Fprintf(cmd.OutOrStdout(), "Monthly cash flow:    $%.2f\n", report.MonthlyCashFlow)
		p.Fprintf(cmd.OutOrStdout(), "Annual NOI:           $%.2f\n", report.AnnualNOI)
		p.Fprintf(cmd.OutOrStdout(), "Total cash invested:  $%.2f\n", report.TotalInvestment)
		p.Fprintf(cmd.OutOrStdout(), "Cap rate:             %.2f%%\n", report.CapRate)
		p.Fprintf(cmd.OutOrStdout(), "Cash-on-cash return:  %.2f%%\n", report.CashOnCashReturn)
		if report.DSCR != nil {
			p.Fprintf(cmd.OutOrStdout(), "DSCR:                 %.2f\n", *report.DSCR)
		}
		if report.PricePerUnit != nil {
			p.Fprintf(cmd.OutOrStdout(), "Price per unit:       $%.2f\n", *report.PricePerUnit)
		}
		if report.EffectivePurchasePrice != nil {
			p.Fprintf(cmd.OutOrStdout(), "Effective price:      $%.2f\n", *report.EffectivePurchasePrice)
		}
		return nil
	},
}

// readDeal loads and validates a deal from a file path or stdin ("-").
func readDeal(path string) (model.Deal, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read deal %s", path)
	}
	return model.UnmarshalDeal(data)
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit machine-readable JSON")
	rootCmd.AddCommand(analyzeCmd)
}

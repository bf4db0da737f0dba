package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/dealdesk/internal/loan"
	"github.com/sells-group/dealdesk/internal/model"
)

var (
	amortizePrincipal    float64
	amortizeRate         float64
	amortizeTerm         int
	amortizeInterestOnly bool
	amortizeMonths       int
)

var amortizeCmd = &cobra.Command{
	Use:   "amortize",
	Short: "Print a loan's amortization schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := model.LoanSpec{
			Principal:    decimal.NewFromFloat(amortizePrincipal),
			AnnualRate:   amortizeRate,
			TermMonths:   amortizeTerm,
			InterestOnly: amortizeInterestOnly,
		}
		if err := spec.Validate(); err != nil {
			return err
		}

		seq, err := loan.Schedule(spec)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "Monthly payment: $%.2f\n\n", num(loan.Payment(spec)))
		p.Fprintf(cmd.OutOrStdout(), "%5s %12s %12s %12s %14s\n", "Month", "Payment", "Principal", "Interest", "Balance")

		limit := amortizeMonths
		if limit <= 0 || limit > amortizeTerm {
			limit = amortizeTerm
		}
		var last loan.Row
		for row := range seq {
			last = row
			if row.Month <= limit {
				p.Fprintf(cmd.OutOrStdout(), "%5d %12.2f %12.2f %12.2f %14.2f\n",
					row.Month, num(row.Payment), num(row.Principal), num(row.Interest), num(row.Balance))
			}
		}
		p.Fprintf(cmd.OutOrStdout(), "\nTotal interest: $%.2f   Total principal: $%.2f\n",
			num(last.CumInterest), num(last.CumPrincipal))
		return nil
	},
}

func init() {
	amortizeCmd.Flags().Float64Var(&amortizePrincipal, "principal", 0, "loan principal")
	amortizeCmd.Flags().Float64Var(&amortizeRate, "rate", 0, "annual interest rate (percent)")
	amortizeCmd.Flags().IntVar(&amortizeTerm, "term", 360, "term in months")
	amortizeCmd.Flags().BoolVar(&amortizeInterestOnly, "interest-only", false, "interest-only loan")
	amortizeCmd.Flags().IntVar(&amortizeMonths, "months", 0, "print only the first N rows (0 = all)")
	amortizeCmd.MarkFlagRequired("principal")
	rootCmd.AddCommand(amortizeCmd)
}

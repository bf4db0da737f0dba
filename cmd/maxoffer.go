package main

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/dealdesk/internal/offer"
	"github.com/sells-group/dealdesk/pkg/comps"
)

var (
	maxofferARV      float64
	maxofferCashLeft float64
	maxofferJSON     bool
)

var maxofferCmd = &cobra.Command{
	Use:   "maxoffer [deal.json]",
	Short: "Compute the maximum allowable offer for a deal",
	Long:  "Derives the ceiling purchase price that still leaves the target cash in the deal. The after-repair value comes from --arv, or from the comparables API when the flag is omitted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deal, err := readDeal(args[0])
		if err != nil {
			return err
		}

		arv := decimal.NewFromFloat(maxofferARV)
		if maxofferARV <= 0 {
			client := comps.New(comps.Config{
				Key:         cfg.Comps.Key,
				BaseURL:     cfg.Comps.BaseURL,
				RatePerSec:  cfg.Comps.RatePerSec,
				Burst:       cfg.Comps.Burst,
				TimeoutSecs: cfg.Comps.TimeoutSecs,
			})
			est, err := client.EstimatedValue(cmd.Context(), deal.Common().Address)
			if err != nil {
				return err
			}
			arv = est.Value
			zap.L().Info("using comps estimate",
				zap.String("value", arv.String()),
				zap.Float64("confidence", est.Confidence),
			)
		}

		cashLeft := maxofferCashLeft
		if cashLeft == 0 {
			cashLeft = cfg.Analysis.TargetCashLeft
		}

		calc := offer.NewCalculator(cfg.Analysis.DefaultLTV)
		result := calc.MaxOffer(arv, deal, decimal.NewFromFloat(cashLeft))

		if maxofferJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "Estimated value:      $%.2f\n", num(result.EstimatedValue))
		p.Fprintf(cmd.OutOrStdout(), "LTV used:             %.1f%%\n", result.LTV)
		p.Fprintf(cmd.OutOrStdout(), "Loan amount:          $%.2f\n", num(result.LoanAmount))
		p.Fprintf(cmd.OutOrStdout(), "Monthly holding cost: $%.2f\n", num(result.MonthlyHoldingCost))
		p.Fprintf(cmd.OutOrStdout(), "Total holding cost:   $%.2f (%d months)\n", num(result.TotalHoldingCost), result.HoldingMonths)
		p.Fprintf(cmd.OutOrStdout(), "Maximum offer:        $%.2f\n", num(result.Offer))
		return nil
	},
}

func init() {
	maxofferCmd.Flags().Float64Var(&maxofferARV, "arv", 0, "after-repair value (0 = look up via comps API)")
	maxofferCmd.Flags().Float64Var(&maxofferCashLeft, "cash-left", 0, "target cash left in the deal")
	maxofferCmd.Flags().BoolVar(&maxofferJSON, "json", false, "emit machine-readable JSON")
	rootCmd.AddCommand(maxofferCmd)
}

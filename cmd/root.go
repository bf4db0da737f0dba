package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealdesk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dealdesk",
	Short: "Real-estate investment analysis",
	Long:  "Analyzes acquisition deals under five strategy variants, computes amortization schedules and maximum allowable offers, and reports trailing operating KPIs for owned properties.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dealdesk/internal/kpi"
	"github.com/sells-group/dealdesk/internal/model"
)

var (
	kpiAll    bool
	kpiUserID string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi [property-id]",
	Short: "Report trailing operating KPIs for owned properties",
	Long:  "Computes year-to-date and since-acquisition KPIs (NOI, income, expenses, cap rate, CoC, DSCR) from a property's transaction ledger, with confidence scoring and refinance detection.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !kpiAll && len(args) == 0 {
			return eris.New("a property id is required unless --all is set")
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		cats, err := loadCategories(cfg)
		if err != nil {
			return err
		}

		props, err := s.ListProperties(ctx, kpiUserID)
		if err != nil {
			return err
		}
		svc := kpi.NewService(props, cats)

		var targets []model.Property
		if kpiAll {
			targets = props
		} else {
			for _, p := range props {
				if p.ID == args[0] {
					targets = append(targets, p)
				}
			}
			if len(targets) == 0 {
				return eris.Errorf("unknown property %q", args[0])
			}
		}

		var mu sync.Mutex
		dashboards := make([]*kpi.Dashboard, 0, len(targets))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, prop := range targets {
			g.Go(func() error {
				ledger, err := s.ListTransactions(gctx, prop.ID)
				if err != nil {
					return err
				}
				dash, err := svc.Dashboard(prop.ID, ledger)
				if err != nil {
					return err
				}
				mu.Lock()
				dashboards = append(dashboards, dash)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Debug("computed dashboards", zap.Int("count", len(dashboards)))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if len(dashboards) == 1 && !kpiAll {
			return enc.Encode(dashboards[0])
		}
		return enc.Encode(dashboards)
	},
}

func init() {
	kpiCmd.Flags().BoolVar(&kpiAll, "all", false, "compute dashboards for every property")
	kpiCmd.Flags().StringVar(&kpiUserID, "user", "", "restrict to one user's properties")
	rootCmd.AddCommand(kpiCmd)
}

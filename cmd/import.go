package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealdesk/internal/model"
)

// importFile is the JSON export format: property facts, their ledgers, and
// saved deal specifications.
type importFile struct {
	Properties   []model.Property    `json:"properties"`
	Transactions []model.Transaction `json:"transactions"`
	Deals        []json.RawMessage   `json:"deals"`
}

var importCmd = &cobra.Command{
	Use:   "import [export.json]",
	Short: "Load properties, ledgers, and deals from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		var file importFile
		if err := json.Unmarshal(data, &file); err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		for i := range file.Properties {
			if err := s.SaveProperty(ctx, &file.Properties[i]); err != nil {
				return err
			}
		}
		for i := range file.Transactions {
			if err := s.AddTransaction(ctx, &file.Transactions[i]); err != nil {
				return err
			}
		}
		for _, raw := range file.Deals {
			deal, err := model.UnmarshalDeal(raw)
			if err != nil {
				return err
			}
			if err := s.SaveDeal(ctx, deal); err != nil {
				return err
			}
		}

		zap.L().Info("import complete",
			zap.Int("properties", len(file.Properties)),
			zap.Int("transactions", len(file.Transactions)),
			zap.Int("deals", len(file.Deals)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

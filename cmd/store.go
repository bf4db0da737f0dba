package main

import (
	"context"

	"github.com/sells-group/dealdesk/internal/config"
	"github.com/sells-group/dealdesk/internal/kpi"
	"github.com/sells-group/dealdesk/internal/store"
)

// openStore opens the configured store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// loadCategories resolves the KPI category sets from config.
func loadCategories(c *config.Config) (kpi.Categories, error) {
	if c.KPI.CategoriesFile == "" {
		return kpi.DefaultCategories(), nil
	}
	return kpi.LoadCategories(c.KPI.CategoriesFile)
}

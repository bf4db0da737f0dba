package kpi

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Categories names the ledger categories the KPI computation excludes from
// operating totals. The sets are configuration, not hardcoded business
// rules: callers can load overrides from a YAML file and the tests exercise
// non-default sets.
type Categories struct {
	// Income categories that are not operating income.
	NonOperatingIncome []string `yaml:"non_operating_income" json:"non_operating_income"`
	// Expense categories that are not operating expenses.
	NonOperatingExpense []string `yaml:"non_operating_expense" json:"non_operating_expense"`
	// The category holding mortgage payments, tracked separately as debt
	// service.
	MortgageCategory string `yaml:"mortgage_category" json:"mortgage_category"`
}

// DefaultCategories returns the standard exclusion sets.
func DefaultCategories() Categories {
	return Categories{
		NonOperatingIncome: []string{
			"security_deposit",
			"loan_principal_repayment",
			"insurance_refund",
			"escrow_refund",
		},
		NonOperatingExpense: []string{
			"asset_acquisition",
			"capital_expenditure",
			"financing_fees",
			"legal_professional",
			"marketing",
			"mortgage",
		},
		MortgageCategory: "mortgage",
	}
}

// LoadCategories reads category overrides from a YAML file. Fields left
// empty fall back to the defaults.
func LoadCategories(path string) (Categories, error) {
	cats := DefaultCategories()
	data, err := os.ReadFile(path)
	if err != nil {
		return cats, eris.Wrapf(err, "kpi: read categories file %s", path)
	}
	var override Categories
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cats, eris.Wrapf(err, "kpi: parse categories file %s", path)
	}
	if len(override.NonOperatingIncome) > 0 {
		cats.NonOperatingIncome = override.NonOperatingIncome
	}
	if len(override.NonOperatingExpense) > 0 {
		cats.NonOperatingExpense = override.NonOperatingExpense
	}
	if override.MortgageCategory != "" {
		cats.MortgageCategory = override.MortgageCategory
	}
	return cats, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

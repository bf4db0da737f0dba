package main

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/analysis"
	"github.com/sells-group/dealdesk/internal/model"
)

// analysisReport is the serialized view of a deal analysis, shared by the
// analyze command and the HTTP API. Ratios that would divide by zero and
// strategy-specific metrics that do not apply are omitted rather than
// reported as zero or infinity.
type analysisReport struct {
	Strategy               model.Strategy `json:"strategy"`
	GrossMonthlyIncome     float64        `json:"gross_monthly_income"`
	MonthlyExpenses        float64        `json:"monthly_expenses"`
	MonthlyCashFlow        float64        `json:"monthly_cash_flow"`
	AnnualCashFlow         float64        `json:"annual_cash_flow"`
	MonthlyNOI             float64        `json:"monthly_noi"`
	AnnualNOI              float64        `json:"annual_noi"`
	MonthlyDebtService     float64        `json:"monthly_debt_service"`
	TotalInvestment        float64        `json:"total_investment"`
	CapRate                float64        `json:"cap_rate"`
	CashOnCashReturn       float64        `json:"cash_on_cash_return"`
	DSCR                   *float64       `json:"dscr,omitempty"`
	PricePerUnit           *float64       `json:"price_per_unit,omitempty"`
	EffectivePurchasePrice *float64       `json:"effective_purchase_price,omitempty"`
}

func num(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// buildReport runs every applicable derivation for the deal.
func buildReport(d model.Deal) analysisReport {
	cashFlow := analysis.MonthlyCashFlow(d)
	noi := analysis.NetOperatingIncome(d)

	report := analysisReport{
		Strategy:           d.Strategy(),
		GrossMonthlyIncome: num(analysis.GrossMonthlyIncome(d)),
		MonthlyExpenses:    num(analysis.MonthlyExpenses(d)),
		MonthlyCashFlow:    num(cashFlow),
		AnnualCashFlow:     num(cashFlow) * 12,
		MonthlyNOI:         num(noi),
		AnnualNOI:          num(noi) * 12,
		MonthlyDebtService: num(analysis.DebtService(d)),
		TotalInvestment:    num(analysis.TotalInvestment(d)),
		CapRate:            analysis.CapRate(d),
		CashOnCashReturn:   analysis.CashOnCashReturn(d),
	}
	if dscr, ok := analysis.DSCR(d); ok {
		report.DSCR = finite(dscr)
	}
	if ppu, ok := analysis.PricePerUnit(d); ok {
		v := num(ppu)
		report.PricePerUnit = &v
	}
	if epp, ok := analysis.EffectivePurchasePrice(d); ok {
		v := num(epp)
		report.EffectivePurchasePrice = &v
	}
	return report
}

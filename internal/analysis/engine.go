// Package analysis derives projected performance metrics for a validated
// deal: monthly cash flow, NOI, cap rate, cash-on-cash return, DSCR, and the
// strategy-specific price variants. Every function is a pure read over the
// deal; division by a zero denominator yields a guarded zero or an absent
// marker, never an error.
package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/loan"
	"github.com/sells-group/dealdesk/internal/model"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// FinancedLoans returns the loan slots that count toward debt service for
// the deal's strategy: the initial loan always, the refinance loan only for
// BRRRR, loan1-3 whenever populated, and the balloon-refinance loan when the
// deal carries a balloon payment.
func FinancedLoans(d model.Deal) []*model.LoanSpec {
	c := d.Common()
	var out []*model.LoanSpec
	if c.InitialLoan != nil {
		out = append(out, c.InitialLoan)
	}
	if d.Strategy() == model.StrategyBRRRR && c.RefinanceLoan != nil {
		out = append(out, c.RefinanceLoan)
	}
	for _, l := range []*model.LoanSpec{c.Loan1, c.Loan2, c.Loan3} {
		if l != nil {
			out = append(out, l)
		}
	}
	if c.HasBalloonPayment && c.BalloonRefinanceLoan != nil {
		out = append(out, c.BalloonRefinanceLoan)
	}
	return out
}

// DebtService sums the monthly payments of every financed loan slot.
func DebtService(d model.Deal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range FinancedLoans(d) {
		total = total.Add(loan.Payment(*l))
	}
	return total
}

// GrossMonthlyIncome selects the strategy's income model: the per-unit rent
// table for multifamily, room count × average room rent for PadSplit, and
// base monthly rent for everything else.
func GrossMonthlyIncome(d model.Deal) decimal.Decimal {
	switch v := d.(type) {
	case *model.MultiFamily:
		total := decimal.Zero
		for _, u := range v.UnitMix {
			total = total.Add(u.Rent.Mul(decimal.NewFromInt(int64(u.Units))))
		}
		return total
	case *model.PadSplit:
		return v.AvgRoomRent.Mul(decimal.NewFromInt(int64(v.Rooms)))
	default:
		return d.Common().MonthlyRent
	}
}

// percentOfIncomeRate sums the percentage-of-income expense drivers,
// including the platform fee for PadSplit deals.
func percentOfIncomeRate(d model.Deal) float64 {
	c := d.Common()
	rate := c.ManagementPct + c.CapExPct + c.VacancyPct + c.RepairsPct
	if ps, ok := d.(*model.PadSplit); ok {
		rate += ps.PlatformFeePct
	}
	return rate
}

// MonthlyExpenses accumulates the fixed-dollar lines (annual taxes and
// insurance divided by 12, plus the monthly lines), the
// percentage-of-income lines, and the debt service of every financed loan.
func MonthlyExpenses(d model.Deal) decimal.Decimal {
	c := d.Common()
	total := c.PropertyTaxes.Div(twelve).
		Add(c.Insurance.Div(twelve)).
		Add(c.HOA).
		Add(c.Utilities).
		Add(c.Internet).
		Add(c.Cleaning).
		Add(c.PestControl).
		Add(c.Landscaping)

	income := GrossMonthlyIncome(d)
	pct := decimal.NewFromFloat(percentOfIncomeRate(d)).Div(hundred)
	total = total.Add(income.Mul(pct))

	return total.Add(DebtService(d))
}

// MonthlyCashFlow is gross income minus all expenses including debt service.
func MonthlyCashFlow(d model.Deal) decimal.Decimal {
	return GrossMonthlyIncome(d).Sub(MonthlyExpenses(d))
}

// NetOperatingIncome is the unlevered monthly result: cash flow with every
// loan payment added back.
func NetOperatingIncome(d model.Deal) decimal.Decimal {
	return MonthlyCashFlow(d).Add(DebtService(d))
}

// TotalInvestment sums the cash the investor puts into the deal: loan down
// payments and closing costs, deal-level closing costs, renovation,
// furnishing, marketing, cash to seller, assignment fee, and for lease
// options the option consideration fee.
func TotalInvestment(d model.Deal) decimal.Decimal {
	c := d.Common()
	total := c.ClosingCosts.
		Add(c.RenovationCost).
		Add(c.FurnishingCost).
		Add(c.MarketingCost).
		Add(c.CashToSeller).
		Add(c.AssignmentFee)
	for _, l := range FinancedLoans(d) {
		total = total.Add(l.CashRequired())
	}
	if lo, ok := d.(*model.LeaseOption); ok {
		total = total.Add(lo.OptionFee)
	}
	return total
}

// CashOnCashReturn is the annualized cash flow over total cash invested, as
// a percentage. A deal with no cash basis has an undefined but
// reportable-as-zero return.
func CashOnCashReturn(d model.Deal) float64 {
	invested := TotalInvestment(d)
	if invested.Sign() == 0 {
		return 0
	}
	coc, _ := MonthlyCashFlow(d).Mul(twelve).Div(invested).Mul(hundred).Float64()
	return coc
}

// CapRate is annualized NOI over purchase price, as a percentage; zero when
// the purchase price is zero.
func CapRate(d model.Deal) float64 {
	price := d.Common().PurchasePrice
	if price.Sign() == 0 {
		return 0
	}
	rate, _ := NetOperatingIncome(d).Mul(twelve).Div(price).Mul(hundred).Float64()
	return rate
}

// DSCR is NOI over monthly debt service. The second return is false when
// the deal carries no debt, in which case the ratio is undefined.
func DSCR(d model.Deal) (float64, bool) {
	ds := DebtService(d)
	if ds.Sign() == 0 {
		return 0, false
	}
	ratio, _ := NetOperatingIncome(d).Div(ds).Float64()
	return ratio, true
}

// PricePerUnit is purchase price over total units. Defined only for
// multifamily deals.
func PricePerUnit(d model.Deal) (decimal.Decimal, bool) {
	mf, ok := d.(*model.MultiFamily)
	if !ok || mf.TotalUnits == 0 {
		return decimal.Zero, false
	}
	return mf.PurchasePrice.Div(decimal.NewFromInt(int64(mf.TotalUnits))), true
}

// EffectivePurchasePrice is defined only for lease options: the strike price
// minus the option fee minus accumulated rent credits (monthly rent × credit
// percentage × option term, capped at the configured ceiling when one is
// set), floored at zero.
func EffectivePurchasePrice(d model.Deal) (decimal.Decimal, bool) {
	lo, ok := d.(*model.LeaseOption)
	if !ok {
		return decimal.Zero, false
	}
	credits := lo.MonthlyRent.
		Mul(decimal.NewFromFloat(lo.RentCreditPct).Div(hundred)).
		Mul(decimal.NewFromInt(int64(lo.OptionTermMonths)))
	if lo.RentCreditCap.Sign() > 0 && credits.Cmp(lo.RentCreditCap) > 0 {
		credits = lo.RentCreditCap
	}
	price := lo.StrikePrice.Sub(lo.OptionFee).Sub(credits)
	if price.Sign() < 0 {
		price = decimal.Zero
	}
	return price, true
}

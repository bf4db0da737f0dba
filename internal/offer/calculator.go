// Package offer derives the maximum allowable offer: the ceiling purchase
// price that still leaves the investor a target amount of cash in the deal
// after the refinance loan pays out renovation, closing, and holding costs.
package offer

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/loan"
	"github.com/sells-group/dealdesk/internal/model"
)

// DefaultLTV is the loan-to-value percentage assumed when the deal carries
// no explicit refinance or balloon LTV.
const DefaultLTV = 75.0

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Result carries the offer plus every intermediate so callers can audit the
// derivation.
type Result struct {
	EstimatedValue     decimal.Decimal `json:"estimated_value"`
	LTV                float64         `json:"ltv"` // percent actually used
	LoanAmount         decimal.Decimal `json:"loan_amount"`
	MonthlyHoldingCost decimal.Decimal `json:"monthly_holding_cost"`
	HoldingMonths      int             `json:"holding_months"`
	TotalHoldingCost   decimal.Decimal `json:"total_holding_cost"`
	TargetCashLeft     decimal.Decimal `json:"target_cash_left"`
	Offer              decimal.Decimal `json:"offer"`
}

// Calculator computes maximum allowable offers.
type Calculator struct {
	defaultLTV float64
}

// NewCalculator creates a Calculator. A non-positive defaultLTV falls back
// to DefaultLTV.
func NewCalculator(defaultLTV float64) *Calculator {
	if defaultLTV <= 0 {
		defaultLTV = DefaultLTV
	}
	return &Calculator{defaultLTV: defaultLTV}
}

// ltv picks the loan-to-value percentage for the deal: the balloon-refinance
// LTV when the deal carries a balloon payment, the BRRRR refinance LTV when
// set, otherwise the configured default.
func (c *Calculator) ltv(d model.Deal) float64 {
	common := d.Common()
	if common.HasBalloonPayment && common.BalloonRefinanceLTV > 0 {
		return common.BalloonRefinanceLTV
	}
	if b, ok := d.(*model.BRRRR); ok && b.RefinanceLTV > 0 {
		return b.RefinanceLTV
	}
	return c.defaultLTV
}

// carryLoan is the strategy's primary financing instrument during the hold:
// the initial acquisition loan for BRRRR, loan1 otherwise.
func carryLoan(d model.Deal) *model.LoanSpec {
	c := d.Common()
	if d.Strategy() == model.StrategyBRRRR {
		return c.InitialLoan
	}
	return c.Loan1
}

// MaxOffer derives the ceiling purchase price for a validated deal given an
// estimated after-repair value. The offer is clamped at zero: a deal whose
// costs exceed the LTV loan has no viable offer, which is a legitimate
// result rather than an error.
func (c *Calculator) MaxOffer(estimatedValue decimal.Decimal, d model.Deal, targetCashLeft decimal.Decimal) Result {
	common := d.Common()
	ltv := c.ltv(d)
	loanAmount := estimatedValue.Mul(decimal.NewFromFloat(ltv)).Div(hundred)

	monthly := common.PropertyTaxes.Div(twelve).
		Add(common.Insurance.Div(twelve)).
		Add(common.Utilities).
		Add(common.HOA)
	if carry := carryLoan(d); carry != nil {
		// interest-only carry during the hold, whatever the loan's own terms
		io := *carry
		io.InterestOnly = true
		monthly = monthly.Add(loan.Payment(io))
	}

	months := common.RenovationMonths
	totalHolding := monthly.Mul(decimal.NewFromInt(int64(months)))

	result := Result{
		EstimatedValue:     estimatedValue,
		LTV:                ltv,
		LoanAmount:         loanAmount,
		MonthlyHoldingCost: monthly,
		HoldingMonths:      months,
		TotalHoldingCost:   totalHolding,
		TargetCashLeft:     targetCashLeft,
	}

	offer := loanAmount.
		Sub(common.RenovationCost).
		Sub(common.ClosingCosts).
		Sub(totalHolding).
		Add(targetCashLeft)
	if offer.Sign() < 0 {
		offer = decimal.Zero
	}
	result.Offer = offer
	return result
}

// Package loan computes level loan payments and month-by-month amortization
// schedules. All functions are pure; amounts are decimals, rates are annual
// percentages carried on the LoanSpec.
package loan

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/model"
)

var one = decimal.NewFromInt(1)

// Payment returns the level monthly payment for a validated LoanSpec.
//
// Interest-only loans pay principal × monthly rate. Zero-rate loans pay
// straight-line principal / term. Everything else uses the standard
// amortization factor p·r(1+r)^n / ((1+r)^n − 1).
//
// A zero term is rejected at LoanSpec construction, never divided by here.
func Payment(spec model.LoanSpec) decimal.Decimal {
	r := spec.MonthlyRate()
	if spec.InterestOnly {
		return spec.Principal.Mul(r)
	}
	if r.IsZero() {
		return spec.Principal.Div(decimal.NewFromInt(int64(spec.TermMonths)))
	}
	factor := one.Add(r).Pow(decimal.NewFromInt(int64(spec.TermMonths)))
	return spec.Principal.Mul(r).Mul(factor).Div(factor.Sub(one))
}

package model

import "github.com/shopspring/decimal"

// LoanSpec describes one amortizing or interest-only loan. It is immutable
// once validated; all payment math lives in internal/loan.
type LoanSpec struct {
	Name         string          `json:"name,omitempty"`
	Principal    decimal.Decimal `json:"principal"`
	AnnualRate   float64         `json:"annual_rate"` // percent, e.g. 4.5
	TermMonths   int             `json:"term_months"`
	DownPayment  decimal.Decimal `json:"down_payment,omitempty"`
	ClosingCosts decimal.Decimal `json:"closing_costs,omitempty"`
	InterestOnly bool            `json:"interest_only,omitempty"`
}

// Validate enforces the LoanSpec invariants: a positive term and a rate
// within [0, 100]. A zero term is rejected here so the payment math never
// has to divide by it.
func (l LoanSpec) Validate() error {
	field := l.Name
	if field == "" {
		field = "loan"
	}
	if l.TermMonths <= 0 {
		return invalidf(field+".term_months", "must be positive, got %d", l.TermMonths)
	}
	if l.AnnualRate < 0 || l.AnnualRate > 100 {
		return invalidf(field+".annual_rate", "must be within [0, 100], got %g", l.AnnualRate)
	}
	if l.Principal.Sign() < 0 {
		return invalidf(field+".principal", "must not be negative")
	}
	return nil
}

// MonthlyRate returns the periodic rate as a decimal fraction
// (annual percent / 12 / 100).
func (l LoanSpec) MonthlyRate() decimal.Decimal {
	return decimal.NewFromFloat(l.AnnualRate).Div(decimal.NewFromInt(1200))
}

// CashRequired is the cash the borrower brings to close this loan.
func (l LoanSpec) CashRequired() decimal.Decimal {
	return l.DownPayment.Add(l.ClosingCosts)
}

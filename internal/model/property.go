package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property holds the static facts for an owned property: what it cost to
// acquire and when. The KPI service reads these; the transaction ledger
// supplies everything else.
type Property struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id,omitempty"`
	Name         string  `json:"name,omitempty"`
	Address      Address `json:"address"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`

	// Acquisition cost breakdown, used for cash-on-cash.
	DownPayment    decimal.Decimal `json:"down_payment,omitempty"`
	ClosingCosts   decimal.Decimal `json:"closing_costs,omitempty"`
	RenovationCost decimal.Decimal `json:"renovation_cost,omitempty"`
	MarketingCost  decimal.Decimal `json:"marketing_cost,omitempty"`
	HoldingCosts   decimal.Decimal `json:"holding_costs,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// TotalInvestment is the cash basis used for the CoC denominator.
func (p Property) TotalInvestment() decimal.Decimal {
	return p.DownPayment.
		Add(p.ClosingCosts).
		Add(p.RenovationCost).
		Add(p.MarketingCost).
		Add(p.HoldingCosts)
}

// Touch stamps UpdatedAt. Called by the store at save time, never implicitly
// on field writes.
func (p *Property) Touch(now time.Time) {
	p.UpdatedAt = now.UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
}

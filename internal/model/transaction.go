package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the side of a ledger record.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is one line of a property's ledger. The KPI service consumes
// these as an opaque, already-persisted record set; it never creates or
// deletes them.
type Transaction struct {
	ID         string          `json:"id,omitempty"`
	PropertyID string          `json:"property_id"`
	Date       time.Time       `json:"date"`
	Type       TransactionType `json:"type"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

// Validate checks a record before it enters the store.
func (t Transaction) Validate() error {
	if t.PropertyID == "" {
		return invalidf("property_id", "required")
	}
	if t.Type != TransactionIncome && t.Type != TransactionExpense {
		return invalidf("type", "must be %q or %q, got %q", TransactionIncome, TransactionExpense, t.Type)
	}
	if t.Date.IsZero() {
		return invalidf("date", "required")
	}
	if t.Amount.Sign() < 0 {
		return invalidf("amount", "must not be negative")
	}
	return nil
}

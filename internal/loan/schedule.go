package loan

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/model"
)

// Row is one month of an amortization schedule.
type Row struct {
	Month        int             `json:"month"` // 1-based
	Payment      decimal.Decimal `json:"payment"`
	Principal    decimal.Decimal `json:"principal"`
	Interest     decimal.Decimal `json:"interest"`
	Balance      decimal.Decimal `json:"balance"`
	CumInterest  decimal.Decimal `json:"cum_interest"`
	CumPrincipal decimal.Decimal `json:"cum_principal"`
}

// Schedule returns a lazy sequence of exactly spec.TermMonths rows.
// Re-invoking the sequence reproduces it deterministically; callers that
// only need a prefix (equity as of today) stop early without paying for a
// full 360-row materialization.
//
// Amortizing a non-positive loan is meaningless, so a principal of zero or
// less, a negative rate, or a non-positive term is an input error rather
// than an empty sequence.
func Schedule(spec model.LoanSpec) (iter.Seq[Row], error) {
	if spec.Principal.Sign() <= 0 {
		return nil, &model.ValidationError{Field: "principal", Reason: "must be positive to amortize"}
	}
	if spec.AnnualRate < 0 {
		return nil, &model.ValidationError{Field: "annual_rate", Reason: "must not be negative"}
	}
	if spec.TermMonths <= 0 {
		return nil, &model.ValidationError{Field: "term_months", Reason: "must be positive"}
	}

	payment := Payment(spec)
	rate := spec.MonthlyRate()

	return func(yield func(Row) bool) {
		balance := spec.Principal
		cumInterest := decimal.Zero
		cumPrincipal := decimal.Zero

		for month := 1; month <= spec.TermMonths; month++ {
			interest := balance.Mul(rate)
			principal := payment.Sub(interest)
			balance = balance.Sub(principal)
			if month == spec.TermMonths && !spec.InterestOnly && balance.Sign() < 0 {
				// absorb rounding drift on the final row
				balance = decimal.Zero
			}
			cumInterest = cumInterest.Add(interest)
			cumPrincipal = cumPrincipal.Add(principal)

			if !yield(Row{
				Month:        month,
				Payment:      payment,
				Principal:    principal,
				Interest:     interest,
				Balance:      balance,
				CumInterest:  cumInterest,
				CumPrincipal: cumPrincipal,
			}) {
				return
			}
		}
	}, nil
}

// Rows materializes the full schedule. Terms up to 360 months are cheap
// enough that eager callers (table output, JSON responses) use this.
func Rows(spec model.LoanSpec) ([]Row, error) {
	seq, err := Schedule(spec)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, spec.TermMonths)
	for row := range seq {
		out = append(out, row)
	}
	return out, nil
}

// BalanceAfter returns the remaining balance once n payments have been made.
// It walks only the first n rows of the schedule.
func BalanceAfter(spec model.LoanSpec, n int) (decimal.Decimal, error) {
	if n <= 0 {
		return spec.Principal, nil
	}
	seq, err := Schedule(spec)
	if err != nil {
		return decimal.Zero, err
	}
	balance := spec.Principal
	for row := range seq {
		balance = row.Balance
		if row.Month >= n {
			break
		}
	}
	return balance, nil
}

package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealdesk/internal/model"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestPayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  model.LoanSpec
		want  float64
		delta float64
	}{
		{
			name:  "30yr conventional",
			spec:  model.LoanSpec{Principal: d(200000), AnnualRate: 4.5, TermMonths: 360},
			want:  1013.37,
			delta: 0.01,
		},
		{
			name:  "15yr conventional",
			spec:  model.LoanSpec{Principal: d(160000), AnnualRate: 6.0, TermMonths: 180},
			want:  1350.17,
			delta: 0.01,
		},
		{
			name:  "interest only",
			spec:  model.LoanSpec{Principal: d(120000), AnnualRate: 8.0, TermMonths: 120, InterestOnly: true},
			want:  800.00,
			delta: 0.001,
		},
		{
			name:  "seller financed at zero percent",
			spec:  model.LoanSpec{Principal: d(60000), AnnualRate: 0, TermMonths: 120},
			want:  500.00,
			delta: 0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := Payment(tt.spec).Float64()
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestPaymentZeroRateIsExact(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(90000), AnnualRate: 0, TermMonths: 360}
	want := spec.Principal.Div(decimal.NewFromInt(360))
	assert.True(t, Payment(spec).Equal(want), "zero-rate payment must equal principal/term exactly")
}

func TestScheduleFullyAmortizes(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(200000), AnnualRate: 4.5, TermMonths: 360}
	rows, err := Rows(spec)
	require.NoError(t, err)
	require.Len(t, rows, 360)

	last := rows[len(rows)-1]
	balance, _ := last.Balance.Float64()
	assert.InDelta(t, 0, balance, 0.01, "final balance should be ~0")

	cumPrincipal, _ := last.CumPrincipal.Float64()
	assert.InDelta(t, 200000, cumPrincipal, 0.01, "cumulative principal should recover the original principal")
}

func TestSchedulePaymentsSplitIntoInterestAndPrincipal(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(150000), AnnualRate: 5.25, TermMonths: 240}
	rows, err := Rows(spec)
	require.NoError(t, err)

	totalPaid := decimal.Zero
	for _, row := range rows {
		totalPaid = totalPaid.Add(row.Payment)
	}
	last := rows[len(rows)-1]
	split, _ := last.CumInterest.Add(last.CumPrincipal).Float64()
	paid, _ := totalPaid.Float64()
	assert.InDelta(t, paid, split, 0.01)
}

func TestScheduleInputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		spec      model.LoanSpec
		wantField string
	}{
		{
			name:      "zero principal",
			spec:      model.LoanSpec{Principal: decimal.Zero, AnnualRate: 5, TermMonths: 12},
			wantField: "principal",
		},
		{
			name:      "negative rate",
			spec:      model.LoanSpec{Principal: d(1000), AnnualRate: -1, TermMonths: 12},
			wantField: "annual_rate",
		},
		{
			name:      "zero term",
			spec:      model.LoanSpec{Principal: d(1000), AnnualRate: 5, TermMonths: 0},
			wantField: "term_months",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Schedule(tt.spec)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestScheduleIsRestartable(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(100000), AnnualRate: 7, TermMonths: 120}
	seq, err := Schedule(spec)
	require.NoError(t, err)

	// Consume a prefix, then re-range; the sequence must reproduce itself.
	var first Row
	for row := range seq {
		first = row
		break
	}
	var again Row
	for row := range seq {
		again = row
		break
	}
	assert.True(t, first.Balance.Equal(again.Balance))
	assert.True(t, first.Interest.Equal(again.Interest))
}

func TestBalanceAfter(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(200000), AnnualRate: 4.5, TermMonths: 360}

	full, err := Rows(spec)
	require.NoError(t, err)

	got, err := BalanceAfter(spec, 40)
	require.NoError(t, err)
	assert.True(t, got.Equal(full[39].Balance))

	untouched, err := BalanceAfter(spec, 0)
	require.NoError(t, err)
	assert.True(t, untouched.Equal(spec.Principal))
}

func TestInterestOnlyScheduleKeepsBalance(t *testing.T) {
	t.Parallel()

	spec := model.LoanSpec{Principal: d(80000), AnnualRate: 9, TermMonths: 24, InterestOnly: true}
	rows, err := Rows(spec)
	require.NoError(t, err)
	require.Len(t, rows, 24)

	last := rows[len(rows)-1]
	assert.True(t, last.Balance.Equal(spec.Principal), "interest-only balance never amortizes")
	assert.True(t, last.CumPrincipal.IsZero())
}

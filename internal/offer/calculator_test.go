package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealdesk/internal/model"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func f(v decimal.Decimal) float64 {
	out, _ := v.Float64()
	return out
}

func brrrrFixture() *model.BRRRR {
	deal := &model.BRRRR{
		DealCommon: model.DealCommon{
			PurchasePrice: d(150000),
			MonthlyRent:   d(1400),
			PropertyTaxes: d(2400), // 200/mo
			Insurance:     d(1200), // 100/mo
			Utilities:     d(150),
			ClosingCosts:  d(4000),
			InitialLoan: &model.LoanSpec{
				Name:       "initial",
				Principal:  d(120000),
				AnnualRate: 10, // hard money: 1000/mo interest-only carry
				TermMonths: 12,
			},
		},
		AfterRepairValue: d(240000),
	}
	deal.RenovationCost = d(30000)
	deal.RenovationMonths = 6
	return deal
}

func TestMaxOfferBRRRR(t *testing.T) {
	t.Parallel()

	deal := brrrrFixture()
	require.NoError(t, deal.Validate())

	calc := NewCalculator(0)
	res := calc.MaxOffer(d(240000), deal, d(5000))

	assert.InDelta(t, 75, res.LTV, 0.001)
	assert.InDelta(t, 180000, f(res.LoanAmount), 0.001)
	// 200 taxes + 100 insurance + 150 utilities + 1000 interest carry
	assert.InDelta(t, 1450, f(res.MonthlyHoldingCost), 0.01)
	assert.InDelta(t, 8700, f(res.TotalHoldingCost), 0.01)
	// 180000 − 30000 − 4000 − 8700 + 5000
	assert.InDelta(t, 142300, f(res.Offer), 0.01)
}

func TestMaxOfferRefinanceLTVOverride(t *testing.T) {
	t.Parallel()

	deal := brrrrFixture()
	deal.RefinanceLTV = 80
	res := NewCalculator(0).MaxOffer(d(240000), deal, decimal.Zero)

	assert.InDelta(t, 80, res.LTV, 0.001)
	assert.InDelta(t, 192000, f(res.LoanAmount), 0.001)
}

func TestMaxOfferBalloonLTV(t *testing.T) {
	t.Parallel()

	deal := &model.LongTermRental{
		DealCommon: model.DealCommon{
			PurchasePrice:       d(180000),
			MonthlyRent:         d(1500),
			HasBalloonPayment:   true,
			BalloonRefinanceLTV: 70,
			BalloonRefinanceLoan: &model.LoanSpec{
				Name:       "balloon",
				Principal:  d(126000),
				AnnualRate: 7,
				TermMonths: 240,
			},
		},
	}
	require.NoError(t, deal.Validate())

	res := NewCalculator(0).MaxOffer(d(200000), deal, decimal.Zero)
	assert.InDelta(t, 70, res.LTV, 0.001)
	assert.InDelta(t, 140000, f(res.LoanAmount), 0.001)
}

func TestMaxOfferNeverNegative(t *testing.T) {
	t.Parallel()

	deal := brrrrFixture()
	deal.RenovationCost = d(500000) // dwarfs the LTV loan
	res := NewCalculator(0).MaxOffer(d(240000), deal, decimal.Zero)
	assert.True(t, res.Offer.IsZero(), "offer must clamp at exactly 0")
}

func TestMaxOfferCarryLoanIsLoan1OutsideBRRRR(t *testing.T) {
	t.Parallel()

	deal := &model.LongTermRental{
		DealCommon: model.DealCommon{
			PurchasePrice: d(100000),
			MonthlyRent:   d(1000),
			Loan1: &model.LoanSpec{
				Name:       "loan1",
				Principal:  d(60000),
				AnnualRate: 12, // 600/mo interest-only
				TermMonths: 12,
			},
		},
	}
	deal.RenovationMonths = 3
	require.NoError(t, deal.Validate())

	res := NewCalculator(0).MaxOffer(d(150000), deal, decimal.Zero)
	assert.InDelta(t, 600, f(res.MonthlyHoldingCost), 0.01)
	assert.InDelta(t, 1800, f(res.TotalHoldingCost), 0.01)
}

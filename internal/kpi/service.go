// Package kpi computes trailing operating KPIs for owned properties from
// their actual transaction ledgers: NOI, income, expenses, cap rate,
// cash-on-cash, and DSCR over year-to-date and since-acquisition windows,
// with data-completeness scoring and refinance detection.
package kpi

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/model"
)

// Completeness thresholds: the earliest transaction must fall within this
// many days of the window start, and the latest within this many days of
// "today", for a window to count as complete history.
const (
	completeStartSlackDays = 30
	completeEndSlackDays   = 45
)

// Confidence levels reported in Metadata.
const (
	ConfidenceNone   = "none"
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Amounts is a monthly/annual pair.
type Amounts struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// RefinanceInfo reports a detected change in debt service.
type RefinanceInfo struct {
	HasRefinanced   bool    `json:"has_refinanced"`
	OriginalPayment float64 `json:"original_payment,omitempty"`
	CurrentPayment  float64 `json:"current_payment,omitempty"`
}

// Metadata qualifies a Result: whether the ledger covers the whole window,
// how much to trust the numbers, and whether the mortgage was refinanced.
type Metadata struct {
	HasCompleteHistory bool           `json:"has_complete_history"`
	ConfidenceLevel    string         `json:"confidence_level"`
	MonthsObserved     int            `json:"months_observed"`
	RefinanceInfo      *RefinanceInfo `json:"refinance_info,omitempty"`
}

// Result is the KPI set for one window. Ratios that would divide by zero
// are absent (nil), never infinite.
type Result struct {
	NetOperatingIncome Amounts  `json:"net_operating_income"`
	TotalIncome        Amounts  `json:"total_income"`
	TotalExpenses      Amounts  `json:"total_expenses"`
	DebtService        Amounts  `json:"debt_service"`
	CashFlow           Amounts  `json:"cash_flow"`
	CapRate            *float64 `json:"cap_rate,omitempty"`
	CashOnCashReturn   *float64 `json:"cash_on_cash_return,omitempty"`
	DSCR               *float64 `json:"dscr,omitempty"`
	CashInvested       float64  `json:"cash_invested"`
	Metadata           Metadata `json:"metadata"`
}

// Dashboard pairs the two trailing windows for a property.
type Dashboard struct {
	PropertyID       string `json:"property_id"`
	YearToDate       Result `json:"year_to_date"`
	SinceAcquisition Result `json:"since_acquisition"`
}

// Service computes dashboards over a caller-supplied property list. It holds
// no hidden global state; build one per invocation context.
type Service struct {
	props       map[string]model.Property
	nonOpIncome map[string]bool
	nonOpExpense map[string]bool
	mortgageCat string

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewService indexes the property facts and compiles the category sets.
func NewService(props []model.Property, cats Categories) *Service {
	index := make(map[string]model.Property, len(props))
	for _, p := range props {
		index[p.ID] = p
	}
	return &Service{
		props:        index,
		nonOpIncome:  toSet(cats.NonOperatingIncome),
		nonOpExpense: toSet(cats.NonOperatingExpense),
		mortgageCat:  cats.MortgageCategory,
		Now:          time.Now,
	}
}

// Dashboard computes year-to-date and since-acquisition KPIs for the
// property from its ledger. A missing purchase date degrades the
// since-acquisition window to a zero-valued result rather than failing; an
// unknown property is an error.
func (s *Service) Dashboard(propertyID string, ledger []model.Transaction) (*Dashboard, error) {
	prop, ok := s.props[propertyID]
	if !ok {
		return nil, eris.Errorf("kpi: unknown property %q", propertyID)
	}

	now := s.Now().UTC()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	dash := &Dashboard{
		PropertyID: propertyID,
		YearToDate: s.window(prop, ledger, yearStart, now),
	}
	if prop.PurchaseDate != nil {
		dash.SinceAcquisition = s.window(prop, ledger, prop.PurchaseDate.UTC(), now)
	} else {
		dash.SinceAcquisition = zeroResult(prop)
	}
	return dash, nil
}

// monthTotals accumulates one calendar month of ledger activity.
type monthTotals struct {
	income    decimal.Decimal
	opExpense decimal.Decimal
	mortgage  decimal.Decimal
}

func (s *Service) window(prop model.Property, ledger []model.Transaction, start, end time.Time) Result {
	var filtered []model.Transaction
	for _, tx := range ledger {
		if tx.PropertyID != prop.ID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	if len(filtered) == 0 {
		return zeroResult(prop)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	months := make(map[string]*monthTotals)
	var mortgagePayments []model.Transaction
	for _, tx := range filtered {
		key := tx.Date.Format("2006-01")
		m := months[key]
		if m == nil {
			m = &monthTotals{}
			months[key] = m
		}
		switch tx.Type {
		case model.TransactionIncome:
			if !s.nonOpIncome[tx.Category] {
				m.income = m.income.Add(tx.Amount)
			}
		case model.TransactionExpense:
			switch {
			case tx.Category == s.mortgageCat:
				m.mortgage = m.mortgage.Add(tx.Amount)
				mortgagePayments = append(mortgagePayments, tx)
			case !s.nonOpExpense[tx.Category]:
				m.opExpense = m.opExpense.Add(tx.Amount)
			}
		}
	}

	// Average over months with activity, not calendar months in the window:
	// a ledger with gaps is averaged only over the months it covers.
	observed := decimal.NewFromInt(int64(len(months)))
	totalIncome, totalOpExpense, totalMortgage := decimal.Zero, decimal.Zero, decimal.Zero
	for _, m := range months {
		totalIncome = totalIncome.Add(m.income)
		totalOpExpense = totalOpExpense.Add(m.opExpense)
		totalMortgage = totalMortgage.Add(m.mortgage)
	}
	avgIncome := totalIncome.Div(observed)
	avgOpExpense := totalOpExpense.Div(observed)
	avgMortgage := totalMortgage.Div(observed)

	noi := avgIncome.Sub(avgOpExpense)
	cashFlow := noi.Sub(avgMortgage)

	result := Result{
		NetOperatingIncome: annualize(noi),
		TotalIncome:        annualize(avgIncome),
		TotalExpenses:      annualize(avgOpExpense.Add(avgMortgage)),
		DebtService:        annualize(avgMortgage),
		CashFlow:           annualize(cashFlow),
		CashInvested:       sanitizeAmount(prop.TotalInvestment()),
	}

	if avgMortgage.Sign() > 0 {
		dscr, _ := noi.Div(avgMortgage).Float64()
		result.DSCR = sanitizeRatio(dscr)
	}
	if prop.PurchasePrice.Sign() > 0 {
		capRate, _ := noi.Mul(decimal.NewFromInt(12)).Div(prop.PurchasePrice).Mul(decimal.NewFromInt(100)).Float64()
		result.CapRate = sanitizeRatio(capRate)
	}
	if invested := prop.TotalInvestment(); invested.Sign() > 0 {
		coc, _ := cashFlow.Mul(decimal.NewFromInt(12)).Div(invested).Mul(decimal.NewFromInt(100)).Float64()
		result.CashOnCashReturn = sanitizeRatio(coc)
	}

	result.Metadata = s.metadata(filtered, mortgagePayments, start, len(months))
	return result
}

func (s *Service) metadata(filtered, mortgagePayments []model.Transaction, start time.Time, monthsObserved int) Metadata {
	now := s.Now().UTC()
	earliest := filtered[0].Date
	latest := filtered[len(filtered)-1].Date

	complete := !earliest.After(start.AddDate(0, 0, completeStartSlackDays)) &&
		!latest.Before(now.AddDate(0, 0, -completeEndSlackDays))

	confidence := ConfidenceLow
	switch {
	case complete:
		confidence = ConfidenceHigh
	case monthsObserved >= 3:
		confidence = ConfidenceMedium
	}

	return Metadata{
		HasCompleteHistory: complete,
		ConfidenceLevel:    confidence,
		MonthsObserved:     monthsObserved,
		RefinanceInfo:      detectRefinance(mortgagePayments),
	}
}

// detectRefinance flags a change in debt service: more than one distinct
// payment amount among the mortgage transactions means the loan was
// replaced. Amounts are compared at cent precision.
func detectRefinance(payments []model.Transaction) *RefinanceInfo {
	if len(payments) == 0 {
		return nil
	}
	distinct := make(map[string]bool, 2)
	for _, tx := range payments {
		distinct[tx.Amount.Round(2).String()] = true
	}
	info := &RefinanceInfo{}
	if len(distinct) > 1 {
		info.HasRefinanced = true
		info.OriginalPayment = sanitizeAmount(payments[0].Amount)
		info.CurrentPayment = sanitizeAmount(payments[len(payments)-1].Amount)
	}
	return info
}

func annualize(monthly decimal.Decimal) Amounts {
	m := sanitizeAmount(monthly)
	return Amounts{Monthly: m, Annual: m * 12}
}

// zeroResult is the graceful answer for an empty window or a property with
// no purchase date. It is distinguishable from a computed all-zero KPI only
// by its metadata.
func zeroResult(prop model.Property) Result {
	return Result{
		CashInvested: sanitizeAmount(prop.TotalInvestment()),
		Metadata: Metadata{
			HasCompleteHistory: false,
			ConfidenceLevel:    ConfidenceNone,
		},
	}
}

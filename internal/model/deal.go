package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Strategy discriminates the deal variants. Each variant carries its own
// required fields, enforced at construction; a Deal that fails validation is
// never returned to the caller.
type Strategy string

const (
	StrategyLongTermRental Strategy = "ltr"
	StrategyBRRRR          Strategy = "brrrr"
	StrategyLeaseOption    Strategy = "lease_option"
	StrategyMultiFamily    Strategy = "multi_family"
	StrategyPadSplit       Strategy = "padsplit"
)

// Strategies lists every supported strategy tag.
var Strategies = []Strategy{
	StrategyLongTermRental,
	StrategyBRRRR,
	StrategyLeaseOption,
	StrategyMultiFamily,
	StrategyPadSplit,
}

func (s Strategy) valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}

// Address identifies the subject property.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// Deal is the sealed interface over the strategy variants. The analysis,
// offer, and store packages only ever see validated Deals.
type Deal interface {
	Strategy() Strategy
	Common() *DealCommon
	Validate() error
}

// DealCommon holds the fields shared by every strategy variant.
type DealCommon struct {
	StrategyTag Strategy `json:"strategy"`
	ID          string   `json:"id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Address     Address  `json:"address"`

	Bedrooms   int `json:"bedrooms,omitempty"`
	Bathrooms  int `json:"bathrooms,omitempty"`
	SquareFeet int `json:"square_feet,omitempty"`
	YearBuilt  int `json:"year_built,omitempty"`

	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ClosingCosts  decimal.Decimal `json:"closing_costs,omitempty"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent,omitempty"`

	// Loan slots. Initial is always part of the debt stack; Refinance only
	// counts for BRRRR; Loan1-3 count whenever populated; BalloonRefinance
	// counts when HasBalloonPayment is set.
	InitialLoan          *LoanSpec `json:"initial_loan,omitempty"`
	RefinanceLoan        *LoanSpec `json:"refinance_loan,omitempty"`
	Loan1                *LoanSpec `json:"loan1,omitempty"`
	Loan2                *LoanSpec `json:"loan2,omitempty"`
	Loan3                *LoanSpec `json:"loan3,omitempty"`
	BalloonRefinanceLoan *LoanSpec `json:"balloon_refinance_loan,omitempty"`
	HasBalloonPayment    bool      `json:"has_balloon_payment,omitempty"`
	BalloonRefinanceLTV  float64   `json:"balloon_refinance_ltv,omitempty"` // percent

	// Fixed expense lines. Taxes and insurance are annual; the rest monthly.
	PropertyTaxes decimal.Decimal `json:"property_taxes,omitempty"`
	Insurance     decimal.Decimal `json:"insurance,omitempty"`
	HOA           decimal.Decimal `json:"hoa,omitempty"`
	Utilities     decimal.Decimal `json:"utilities,omitempty"`
	Internet      decimal.Decimal `json:"internet,omitempty"`
	Cleaning      decimal.Decimal `json:"cleaning,omitempty"`
	PestControl   decimal.Decimal `json:"pest_control,omitempty"`
	Landscaping   decimal.Decimal `json:"landscaping,omitempty"`

	// Percentage-of-income expense drivers.
	ManagementPct float64 `json:"management_pct,omitempty"`
	CapExPct      float64 `json:"capex_pct,omitempty"`
	VacancyPct    float64 `json:"vacancy_pct,omitempty"`
	RepairsPct    float64 `json:"repairs_pct,omitempty"`

	// Cash-invested lines beyond loan down payments and closing costs.
	RenovationCost   decimal.Decimal `json:"renovation_cost,omitempty"`
	RenovationMonths int             `json:"renovation_months,omitempty"`
	FurnishingCost   decimal.Decimal `json:"furnishing_cost,omitempty"`
	MarketingCost    decimal.Decimal `json:"marketing_cost,omitempty"`
	CashToSeller     decimal.Decimal `json:"cash_to_seller,omitempty"`
	AssignmentFee    decimal.Decimal `json:"assignment_fee,omitempty"`
}

// Common implements Deal.
func (c *DealCommon) Common() *DealCommon { return c }

// loanSlots returns the populated named loan slots, regardless of whether
// the strategy counts them toward debt service.
func (c *DealCommon) loanSlots() []*LoanSpec {
	var out []*LoanSpec
	for _, l := range []*LoanSpec{
		c.InitialLoan, c.RefinanceLoan, c.Loan1, c.Loan2, c.Loan3, c.BalloonRefinanceLoan,
	} {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (c *DealCommon) validate() error {
	if !c.StrategyTag.valid() {
		return invalidf("strategy", "unknown strategy %q", string(c.StrategyTag))
	}
	if c.PurchasePrice.Sign() < 0 {
		return invalidf("purchase_price", "must not be negative")
	}
	if c.MonthlyRent.Sign() < 0 {
		return invalidf("monthly_rent", "must not be negative")
	}
	for _, pct := range []struct {
		name  string
		value float64
	}{
		{"management_pct", c.ManagementPct},
		{"capex_pct", c.CapExPct},
		{"vacancy_pct", c.VacancyPct},
		{"repairs_pct", c.RepairsPct},
	} {
		if pct.value < 0 || pct.value > 100 {
			return invalidf(pct.name, "must be within [0, 100], got %g", pct.value)
		}
	}
	for _, l := range c.loanSlots() {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if c.HasBalloonPayment && c.BalloonRefinanceLoan == nil {
		return invalidf("balloon_refinance_loan", "required when has_balloon_payment is set")
	}
	return nil
}

// LongTermRental is a buy-and-hold single-unit rental.
type LongTermRental struct {
	DealCommon
}

func (d *LongTermRental) Strategy() Strategy { return StrategyLongTermRental }

func (d *LongTermRental) Validate() error {
	d.StrategyTag = StrategyLongTermRental
	return d.validate()
}

// BRRRR is buy-rehab-rent-refinance-repeat: an initial acquisition loan is
// replaced by a refinance loan sized against the after-repair value.
type BRRRR struct {
	DealCommon
	AfterRepairValue decimal.Decimal `json:"after_repair_value"`
	RefinanceLTV     float64         `json:"refinance_ltv,omitempty"` // percent
}

func (d *BRRRR) Strategy() Strategy { return StrategyBRRRR }

func (d *BRRRR) Validate() error {
	d.StrategyTag = StrategyBRRRR
	if err := d.validate(); err != nil {
		return err
	}
	if d.AfterRepairValue.Sign() <= 0 {
		return invalidf("after_repair_value", "required and must be positive")
	}
	if d.RenovationCost.Sign() <= 0 {
		return invalidf("renovation_cost", "required and must be positive")
	}
	if d.RenovationMonths <= 0 {
		return invalidf("renovation_months", "required and must be positive")
	}
	if d.RefinanceLTV < 0 || d.RefinanceLTV > 100 {
		return invalidf("refinance_ltv", "must be within [0, 100], got %g", d.RefinanceLTV)
	}
	return nil
}

// LeaseOption is a rent-to-own structure: the tenant pays an option fee and
// monthly rent credits toward a strike price above today's purchase price.
type LeaseOption struct {
	DealCommon
	StrikePrice      decimal.Decimal `json:"strike_price"`
	OptionFee        decimal.Decimal `json:"option_fee,omitempty"`
	RentCreditPct    float64         `json:"rent_credit_pct,omitempty"` // percent of rent credited
	OptionTermMonths int             `json:"option_term_months"`
	RentCreditCap    decimal.Decimal `json:"rent_credit_cap,omitempty"`
}

func (d *LeaseOption) Strategy() Strategy { return StrategyLeaseOption }

func (d *LeaseOption) Validate() error {
	d.StrategyTag = StrategyLeaseOption
	if err := d.validate(); err != nil {
		return err
	}
	if d.StrikePrice.Cmp(d.PurchasePrice) <= 0 {
		return invalidf("strike_price", "must exceed purchase_price")
	}
	if d.OptionTermMonths <= 0 {
		return invalidf("option_term_months", "required and must be positive")
	}
	if d.RentCreditPct < 0 || d.RentCreditPct > 100 {
		return invalidf("rent_credit_pct", "must be within [0, 100], got %g", d.RentCreditPct)
	}
	return nil
}

// UnitLine is one row of a multifamily unit mix.
type UnitLine struct {
	Label string          `json:"label,omitempty"` // e.g. "2bd/1ba"
	Units int             `json:"units"`
	Rent  decimal.Decimal `json:"rent"` // monthly, per unit
}

// MultiFamily is a multi-unit building priced and rented per unit mix.
type MultiFamily struct {
	DealCommon
	TotalUnits    int        `json:"total_units"`
	OccupiedUnits int        `json:"occupied_units"`
	UnitMix       []UnitLine `json:"unit_mix"`
}

func (d *MultiFamily) Strategy() Strategy { return StrategyMultiFamily }

func (d *MultiFamily) Validate() error {
	d.StrategyTag = StrategyMultiFamily
	if err := d.validate(); err != nil {
		return err
	}
	if d.TotalUnits <= 0 {
		return invalidf("total_units", "required and must be positive")
	}
	if d.OccupiedUnits < 0 {
		return invalidf("occupied_units", "must not be negative")
	}
	if d.OccupiedUnits > d.TotalUnits {
		return invalidf("occupied_units", "must not exceed total_units (%d > %d)", d.OccupiedUnits, d.TotalUnits)
	}
	for i, u := range d.UnitMix {
		if u.Units <= 0 {
			return invalidf("unit_mix", "row %d: units must be positive", i)
		}
		if u.Rent.Sign() < 0 {
			return invalidf("unit_mix", "row %d: rent must not be negative", i)
		}
	}
	return nil
}

// PadSplit is a single-family home rented by the room through a platform
// that takes a percentage fee.
type PadSplit struct {
	DealCommon
	Rooms          int             `json:"rooms"`
	AvgRoomRent    decimal.Decimal `json:"avg_room_rent"`
	PlatformFeePct float64         `json:"platform_fee_pct,omitempty"` // percent of income
}

func (d *PadSplit) Strategy() Strategy { return StrategyPadSplit }

func (d *PadSplit) Validate() error {
	d.StrategyTag = StrategyPadSplit
	if err := d.validate(); err != nil {
		return err
	}
	if d.Rooms <= 0 {
		return invalidf("rooms", "required and must be positive")
	}
	if d.AvgRoomRent.Sign() <= 0 {
		return invalidf("avg_room_rent", "required and must be positive")
	}
	if d.PlatformFeePct < 0 || d.PlatformFeePct > 100 {
		return invalidf("platform_fee_pct", "must be within [0, 100], got %g", d.PlatformFeePct)
	}
	return nil
}

// UnmarshalDeal decodes a JSON deal, dispatching on the "strategy"
// discriminator, and validates the variant before returning it. No partial
// deal ever escapes: a validation failure returns a nil Deal and a
// *ValidationError naming the field.
func UnmarshalDeal(data []byte) (Deal, error) {
	var probe struct {
		Strategy Strategy `json:"strategy"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, invalidf("strategy", "undecodable deal: %v", err)
	}

	var deal Deal
	switch probe.Strategy {
	case StrategyLongTermRental:
		deal = &LongTermRental{}
	case StrategyBRRRR:
		deal = &BRRRR{}
	case StrategyLeaseOption:
		deal = &LeaseOption{}
	case StrategyMultiFamily:
		deal = &MultiFamily{}
	case StrategyPadSplit:
		deal = &PadSplit{}
	default:
		return nil, invalidf("strategy", "unknown strategy %q", string(probe.Strategy))
	}

	if err := json.Unmarshal(data, deal); err != nil {
		return nil, invalidf("strategy", "undecodable %s deal: %v", probe.Strategy, err)
	}
	if err := deal.Validate(); err != nil {
		return nil, err
	}
	return deal, nil
}

// MarshalDeal encodes a deal with its strategy discriminator so that
// UnmarshalDeal round-trips it.
func MarshalDeal(d Deal) ([]byte, error) {
	d.Common().StrategyTag = d.Strategy()
	return json.Marshal(d)
}

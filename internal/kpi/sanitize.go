package kpi

import (
	"math"

	"github.com/shopspring/decimal"
)

// Every monetary output leaves this package as a plain float64, and every
// ratio that can degenerate leaves as a nil-able pointer. Downstream JSON
// consumers must never observe a non-finite number.

func sanitizeAmount(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func sanitizeRatio(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

package roi

import (
	"encoding/json"
	"math"
	"strconv"
)

// NotApplicable is the display text of a Figure without a value.
const NotApplicable = "N/A"

// ceilTolerance absorbs float noise so exact quotients such as 24.000000000000004
// do not round up to the next month.
const ceilTolerance = 1e-9

// Figure is a derived number that may be not applicable, for example a ratio
// whose denominator is zero.
type Figure struct {
	Value float64
	Valid bool
}

func figure(v float64) Figure {
	return Figure{Value: v, Valid: true}
}

// Format renders the figure with the given number of decimals, or NotApplicable.
func (f Figure) Format(decimals int) string {
	if !f.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(f.Value, 'f', decimals, 64)
}

// MarshalJSON encodes a missing figure as null.
func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a number or null.
func (f *Figure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Figure{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = figure(v)
	return nil
}

// Result contains the metrics derived from an InputState. Both the lease and
// the purchase branch are always populated; the mode only selects which one
// is shown.
type Result struct {
	Baseline              float64 `json:"baseline"`
	Savings               float64 `json:"savings"`
	LeaseAnnual           float64 `json:"leaseAnnual"`
	PurchasePrice         float64 `json:"purchasePrice"`
	ROILease              Figure  `json:"roiLease"`
	ROIPurchase           Figure  `json:"roiPurchase"`
	PaybackMonthsLease    Figure  `json:"paybackMonthsLease"`
	PaybackMonthsPurchase Figure  `json:"paybackMonthsPurchase"`
}

// Flags are the advisory booleans behind the calculator banners.
type Flags struct {
	ShowWarning   bool `json:"showWarning"`
	IsEmptyInputs bool `json:"isEmptyInputs"`
}

// Compute derives the ROI metrics and advisory flags for s. It never fails:
// zero denominators and non-positive savings yield invalid Figures.
func Compute(s InputState) (Result, Flags) {
	// Sanitation cost is entered monthly; every other cost term is annual.
	baseline := finite(s.SanitationCost*12 +
		s.OutbreaksPerYear*s.OutbreakCost +
		s.SickDays*s.WorkersComp +
		s.CustomCost)
	savings := finite(baseline * s.SavingsRate)
	leaseAnnual := finite(s.LeaseCost * 12)
	purchasePrice := finite(s.PurchasePrice)

	result := Result{
		Baseline:              baseline,
		Savings:               savings,
		LeaseAnnual:           leaseAnnual,
		PurchasePrice:         purchasePrice,
		ROILease:              returnOn(savings, leaseAnnual),
		ROIPurchase:           returnOn(savings, purchasePrice),
		PaybackMonthsLease:    paybackMonths(leaseAnnual, savings),
		PaybackMonthsPurchase: paybackMonths(purchasePrice, savings),
	}

	cost := leaseAnnual
	if s.Mode == ModePurchase {
		cost = purchasePrice
	}

	flags := Flags{
		ShowWarning:   savings < cost,
		IsEmptyInputs: s.SanitationCost == 0 && s.OutbreaksPerYear == 0 && s.SickDays == 0,
	}

	return result, flags
}

// returnOn is the percentage gain of savings over cost.
func returnOn(savings, cost float64) Figure {
	if cost == 0 {
		return Figure{}
	}
	return finiteFigure((savings - cost) / cost * 100)
}

// paybackMonths is the whole number of months before savings cover cost.
func paybackMonths(cost, savings float64) Figure {
	if savings <= 0 {
		return Figure{}
	}
	return finiteFigure(math.Max(0, math.Ceil(cost/savings*12-ceilTolerance)))
}

// finite maps NaN and infinities to 0. Records that skip Update can carry them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finiteFigure(v float64) Figure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Figure{}
	}
	return figure(v)
}

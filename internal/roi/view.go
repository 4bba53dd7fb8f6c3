package roi

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	ChartTitle        = "Annual Cost Comparison"
	LabelCurrentCosts = "Current Costs"
	LabelLeaseCost    = "Annual Lease Cost"
	LabelPurchase     = "Purchase Price"
	LabelSavings      = "Estimated Savings"
)

// Chart is the two-bar series handed to the chart collaborator.
type Chart struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Data   []string `json:"data"`
}

// ChartFor builds the cost-versus-savings series for mode. Lease mode keeps
// the current-costs bar; purchase mode compares the purchase price.
func ChartFor(r Result, mode Mode) Chart {
	label, cost := LabelCurrentCosts, r.Baseline
	if mode == ModePurchase {
		label, cost = LabelPurchase, r.PurchasePrice
	}
	return Chart{
		Title:  ChartTitle,
		Labels: []string{label, LabelSavings},
		Data:   []string{Fixed2(cost), Fixed2(r.Savings)},
	}
}

// Summary is the mode-selected view of a Result.
type Summary struct {
	Mode          Mode   `json:"mode"`
	CostLabel     string `json:"costLabel"`
	Cost          string `json:"cost"`
	Baseline      string `json:"baseline"`
	Savings       string `json:"savings"`
	ROI           string `json:"roi"`
	PaybackMonths string `json:"paybackMonths"`
	MonthlyLease  string `json:"monthlyLease"`
	ShowWarning   bool   `json:"showWarning"`
	ShowEmptyTip  bool   `json:"showEmptyTip"`
}

// Summarize selects the lease or purchase branch of r for display.
func Summarize(s InputState, r Result, f Flags) Summary {
	summary := Summary{
		Mode:         s.Mode,
		Baseline:     Money(r.Baseline),
		Savings:      Money(r.Savings),
		MonthlyLease: Money(s.LeaseCost),
		ShowWarning:  f.ShowWarning,
		ShowEmptyTip: f.IsEmptyInputs,
	}

	if s.Mode == ModePurchase {
		summary.CostLabel = LabelPurchase
		summary.Cost = Money(r.PurchasePrice)
		summary.ROI = r.ROIPurchase.Format(1)
		summary.PaybackMonths = r.PaybackMonthsPurchase.Format(0)
	} else {
		summary.CostLabel = LabelLeaseCost
		summary.Cost = Money(r.LeaseAnnual)
		summary.ROI = r.ROILease.Format(1)
		summary.PaybackMonths = r.PaybackMonthsLease.Format(0)
	}
	return summary
}

// Fixed2 renders v rounded half away from zero to two decimals.
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Money renders v with thousands separators and two decimals.
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable
	}
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return humanize.FormatFloat("#,###.##", rounded)
}

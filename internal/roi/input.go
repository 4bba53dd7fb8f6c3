package roi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MinPurchasePrice is the floor applied to every purchase price update.
	MinPurchasePrice = 12000.0
	// MaxAmount caps every numeric input so derived products stay finite.
	MaxAmount = 1e12

	DefaultLeaseCost     = 750.0
	DefaultPurchasePrice = 30000.0
	DefaultSavingsRate   = 0.3
)

// SavingsRates lists the savings rates a prospect can select.
var SavingsRates = []float64{0.2, 0.3, 0.4}

// Mode is the active cost scenario.
type Mode string

const (
	ModeLease    Mode = "lease"
	ModePurchase Mode = "purchase"
)

// ParseMode accepts "lease" or "purchase" in any letter case.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLease:
		return ModeLease, nil
	case ModePurchase:
		return ModePurchase, nil
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}

// Field names match the form inputs of the calculator.
const (
	FieldSanitationCost   = "sanitationCost"
	FieldOutbreaksPerYear = "outbreaksPerYear"
	FieldOutbreakCost     = "outbreakCost"
	FieldSickDays         = "sickDays"
	FieldWorkersComp      = "workersComp"
	FieldCustomCost       = "customCost"
	FieldSavingsRate      = "savingsRate"
	FieldLeaseCost        = "leaseCost"
	FieldPurchasePrice    = "purchasePrice"
	FieldEmail            = "email"
)

// Fields lists every editable field in form order.
var Fields = []string{
	FieldSanitationCost,
	FieldOutbreaksPerYear,
	FieldOutbreakCost,
	FieldSickDays,
	FieldWorkersComp,
	FieldCustomCost,
	FieldSavingsRate,
	FieldLeaseCost,
	FieldPurchasePrice,
	FieldEmail,
}

// InputState holds the current value of each calculator field.
// It is a value type: every mutation returns a new record.
type InputState struct {
	SanitationCost   float64 `json:"sanitationCost" yaml:"sanitationCost"`
	OutbreaksPerYear float64 `json:"outbreaksPerYear" yaml:"outbreaksPerYear"`
	OutbreakCost     float64 `json:"outbreakCost" yaml:"outbreakCost"`
	SickDays         float64 `json:"sickDays" yaml:"sickDays"`
	WorkersComp      float64 `json:"workersComp" yaml:"workersComp"`
	CustomCost       float64 `json:"customCost" yaml:"customCost"`
	SavingsRate      float64 `json:"savingsRate" yaml:"savingsRate"`
	LeaseCost        float64 `json:"leaseCost" yaml:"leaseCost"`
	PurchasePrice    float64 `json:"purchasePrice" yaml:"purchasePrice"`
	Email            string  `json:"email" yaml:"email"`
	Mode             Mode    `json:"mode" yaml:"mode"`
}

// DefaultInputState returns the record a new session starts with.
func DefaultInputState() InputState {
	return InputState{
		SavingsRate:   DefaultSavingsRate,
		LeaseCost:     DefaultLeaseCost,
		PurchasePrice: DefaultPurchasePrice,
		Mode:          ModeLease,
	}
}

// Reset returns the canonical default record regardless of prior state.
func Reset() InputState {
	return DefaultInputState()
}

// Update returns a copy of s with field set from rawValue.
// Numeric fields coerce empty or unparseable input to 0, and the purchase
// price never drops below MinPurchasePrice. Unknown fields leave s unchanged.
func (s InputState) Update(field, rawValue string) InputState {
	switch field {
	case FieldSanitationCost:
		s.SanitationCost = parseAmount(rawValue)
	case FieldOutbreaksPerYear:
		s.OutbreaksPerYear = parseAmount(rawValue)
	case FieldOutbreakCost:
		s.OutbreakCost = parseAmount(rawValue)
	case FieldSickDays:
		s.SickDays = parseAmount(rawValue)
	case FieldWorkersComp:
		s.WorkersComp = parseAmount(rawValue)
	case FieldCustomCost:
		s.CustomCost = parseAmount(rawValue)
	case FieldSavingsRate:
		if rate, ok := parseSavingsRate(rawValue); ok {
			s.SavingsRate = rate
		}
	case FieldLeaseCost:
		s.LeaseCost = parseAmount(rawValue)
	case FieldPurchasePrice:
		s.PurchasePrice = math.Max(MinPurchasePrice, parseAmount(rawValue))
	case FieldEmail:
		s.Email = rawValue
	}
	return s
}

// SetMode switches the active scenario without touching any other field.
func (s InputState) SetMode(mode Mode) InputState {
	s.Mode = mode
	return s
}

// Value echoes a field for a controlled form input. Cost fields that are
// still zero echo as "" so their placeholders show.
func (s InputState) Value(field string) string {
	switch field {
	case FieldSanitationCost:
		return formatOptional(s.SanitationCost)
	case FieldOutbreaksPerYear:
		return formatOptional(s.OutbreaksPerYear)
	case FieldOutbreakCost:
		return formatOptional(s.OutbreakCost)
	case FieldSickDays:
		return formatOptional(s.SickDays)
	case FieldWorkersComp:
		return formatOptional(s.WorkersComp)
	case FieldCustomCost:
		return formatOptional(s.CustomCost)
	case FieldSavingsRate:
		return formatNumber(s.SavingsRate)
	case FieldLeaseCost:
		return formatNumber(s.LeaseCost)
	case FieldPurchasePrice:
		return formatNumber(s.PurchasePrice)
	case FieldEmail:
		return s.Email
	}
	return ""
}

// Normalize re-applies the coercion rules to a record that did not come
// through Update, such as one decoded from a session store or a file.
func (s InputState) Normalize() InputState {
	for _, v := range []*float64{
		&s.SanitationCost, &s.OutbreaksPerYear, &s.OutbreakCost,
		&s.SickDays, &s.WorkersComp, &s.CustomCost, &s.LeaseCost,
	} {
		*v = sanitize(*v)
	}
	s.PurchasePrice = math.Max(MinPurchasePrice, sanitize(s.PurchasePrice))
	if rate, ok := matchSavingsRate(s.SavingsRate); ok {
		s.SavingsRate = rate
	} else {
		s.SavingsRate = DefaultSavingsRate
	}
	if s.Mode != ModePurchase {
		s.Mode = ModeLease
	}
	return s
}

// parseAmount reads a non-negative number typed by a person. A leading
// currency sign and thousands separators are accepted.
func parseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return sanitize(value)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Min(v, MaxAmount)
}

func parseSavingsRate(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return matchSavingsRate(value)
}

func matchSavingsRate(v float64) (float64, bool) {
	for _, rate := range SavingsRates {
		if math.Abs(v-rate) < 1e-9 {
			return rate, true
		}
	}
	return 0, false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v float64) string {
	if v == 0 {
		return ""
	}
	return formatNumber(v)
}

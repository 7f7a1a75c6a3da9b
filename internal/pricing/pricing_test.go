package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkessler/panelwerk/internal/domain"
	"github.com/mkessler/panelwerk/internal/pricing"
)

func config(length, width, height, qty int) domain.Configuration {
	return domain.Configuration{
		LengthMM:    length,
		WidthMM:     width,
		HeightMM:    height,
		Quantity:    qty,
		CoatedSides: []domain.Side{domain.SideTop, domain.SideBottom},
	}
}

// Test_Calculator_SpecificationExample validates the reference scenario:
// 1000x500x18mm, qty 5, base price 166/m² => area 0.5m², no surcharge,
// unit 83.00, total 415.00.
func Test_Calculator_SpecificationExample(t *testing.T) {
	calc := pricing.NewCalculator(166.0, "EUR")

	result := calc.Price(config(1000, 500, 18, 5))

	assert.Equal(t, 83.00, result.UnitPrice)
	assert.Equal(t, 415.00, result.TotalPrice)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, 5, result.Quantity)
	assert.Equal(t, 0.5, result.Details["area_m2"])
	assert.Equal(t, 0.5, result.Details["chargeable_area_m2"])
	assert.Equal(t, 1.0, result.Details["thickness_factor"])
	assert.Equal(t, 166.0, result.Details["base_price_per_m2"])
}

func Test_Calculator_MinimumAreaFloor(t *testing.T) {
	calc := pricing.NewCalculator(100.0, "EUR")

	tests := []struct {
		name         string
		length       int
		width        int
		expectedUnit float64
		explanation  string
	}{
		{
			name:         "below floor is billed at floor",
			length:       100,
			width:        100,
			expectedUnit: 15.00,
			explanation:  "0.01m² < 0.15m² floor, 0.15 * 100 = 15.00",
		},
		{
			name:         "exactly at floor",
			length:       500,
			width:        300,
			expectedUnit: 15.00,
			explanation:  "0.15m² * 100 = 15.00",
		},
		{
			name:         "above floor uses true area",
			length:       500,
			width:        400,
			expectedUnit: 20.00,
			explanation:  "0.2m² * 100 = 20.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.Price(config(tt.length, tt.width, 18, 1))
			assert.Equal(t, tt.expectedUnit, result.UnitPrice, tt.explanation)
		})
	}
}

func Test_Calculator_ThicknessSurcharge(t *testing.T) {
	calc := pricing.NewCalculator(100.0, "EUR")

	tests := []struct {
		name           string
		height         int
		expectedUnit   float64
		expectedFactor float64
	}{
		{"below threshold", 18, 50.00, 1.0},
		{"just below threshold", 29, 50.00, 1.0},
		{"at threshold", 30, 67.50, 1.35},
		{"above threshold", 40, 67.50, 1.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1000x500 => 0.5m², 0.5 * 100 = 50.00 before surcharge
			result := calc.Price(config(1000, 500, tt.height, 1))
			assert.Equal(t, tt.expectedUnit, result.UnitPrice)
			assert.Equal(t, tt.expectedFactor, result.Details["thickness_factor"])
		})
	}
}

func Test_Calculator_RoundsToCents(t *testing.T) {
	// 577x577 => 0.332929m². 0.332929 * 100 = 33.2929, rounds to 33.29.
	calc := pricing.NewCalculator(100.0, "EUR")

	result := calc.Price(config(577, 577, 18, 3))

	assert.Equal(t, 33.29, result.UnitPrice)
	assert.Equal(t, 99.87, result.TotalPrice, "total is computed from the rounded unit price")
}

func Test_Calculator_TotalScalesWithQuantity(t *testing.T) {
	calc := pricing.NewCalculator(166.0, "EUR")

	for _, qty := range []int{1, 2, 7, 100} {
		result := calc.Price(config(1000, 500, 18, qty))
		assert.Equal(t, domain.Round2(83.00*float64(qty)), result.TotalPrice)
	}
}

func Test_Calculator_Idempotent(t *testing.T) {
	calc := pricing.NewCalculator(166.0, "EUR")
	cfg := config(800, 600, 30, 4)

	first := calc.Price(cfg)
	second := calc.Price(cfg)

	assert.Equal(t, first, second)
}

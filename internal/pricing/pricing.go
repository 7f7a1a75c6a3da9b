// Package pricing computes panel prices from validated configurations.
// The calculation is pure and total over valid input: no I/O, no error
// conditions.
package pricing

import (
	"github.com/mkessler/panelwerk/internal/domain"
)

// Business constants. Hardcoded by agreement with the sales team; keep them
// named rather than configurable until the domain owners confirm they are
// stable contracts.
const (
	// MinChargeableAreaM2 is the minimum area a piece is billed at. Pieces
	// with a smaller front face are charged at this floor, not their true
	// area.
	MinChargeableAreaM2 = 0.15

	// ThicknessSurchargeMM is the panel height from which the thickness
	// surcharge applies.
	ThicknessSurchargeMM = 30

	// ThicknessSurchargeFactor multiplies the per-area base price for
	// panels at or above ThicknessSurchargeMM.
	ThicknessSurchargeFactor = 1.35
)

const mmPerMeter = 1000.0

// Calculator prices configurations against a per-square-meter base price.
type Calculator struct {
	basePricePerM2 float64
	currency       string
}

// NewCalculator creates a calculator for the given base price and currency.
func NewCalculator(basePricePerM2 float64, currency string) *Calculator {
	return &Calculator{
		basePricePerM2: basePricePerM2,
		currency:       currency,
	}
}

// Price computes the unit and total price for a configuration.
//
// The front face (length x width) determines the chargeable area, floored
// at MinChargeableAreaM2. Panels of ThicknessSurchargeMM or more are priced
// at a surcharged per-area rate. Currency-facing outputs are rounded to
// 2 decimals, half up.
func (c *Calculator) Price(cfg domain.Configuration) domain.PriceResult {
	lengthM := float64(cfg.LengthMM) / mmPerMeter
	widthM := float64(cfg.WidthMM) / mmPerMeter
	area := lengthM * widthM

	chargeableArea := area
	if chargeableArea < MinChargeableAreaM2 {
		chargeableArea = MinChargeableAreaM2
	}

	factor := 1.0
	if cfg.HeightMM >= ThicknessSurchargeMM {
		factor = ThicknessSurchargeFactor
	}

	unitPrice := domain.Round2(chargeableArea * c.basePricePerM2 * factor)
	totalPrice := domain.Round2(unitPrice * float64(cfg.Quantity))

	return domain.PriceResult{
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		Currency:   c.currency,
		Quantity:   cfg.Quantity,
		Details: map[string]float64{
			"area_m2":            area,
			"chargeable_area_m2": chargeableArea,
			"thickness_factor":   factor,
			"base_price_per_m2":  c.basePricePerM2,
		},
	}
}

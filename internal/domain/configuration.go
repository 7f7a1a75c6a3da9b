package domain

import "fmt"

// Side identifies one face of a panel.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideFront  Side = "front"
	SideBack   Side = "back"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides lists all valid panel faces.
var Sides = []Side{SideTop, SideBottom, SideFront, SideBack, SideLeft, SideRight}

// Valid reports whether s is one of the six panel faces.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideBottom, SideFront, SideBack, SideLeft, SideRight:
		return true
	}
	return false
}

// DrillHole describes a single drilling on a panel face.
// Offsets are measured from the face's reference corner in millimeters.
type DrillHole struct {
	Side       Side `json:"side"`
	OffsetXMM  int  `json:"offsetXMm"`
	OffsetYMM  int  `json:"offsetYMm"`
	DiameterMM int  `json:"diameterMm"`
}

// Configuration is a customer's panel configuration. Dimensions are in
// millimeters. A Configuration is treated as immutable once it has passed
// Validate; quote operations copy it by value and never mutate it.
type Configuration struct {
	LengthMM int `json:"lengthMm"`
	WidthMM  int `json:"widthMm"`
	HeightMM int `json:"heightMm"`
	Quantity int `json:"quantity"`

	// CoatedSides is the non-empty, duplicate-free set of faces that
	// receive coating.
	CoatedSides []Side `json:"coatedSides"`

	// SurfaceStructure is an optional finish structure tag.
	SurfaceStructure string `json:"surfaceStructure,omitempty"`

	// DrillHoles is an optional list of drillings.
	DrillHoles []DrillHole `json:"drillHoles,omitempty"`
}

// Validate checks the structural invariants of a configuration.
// Upstream form-level validation (ranges, catalog constraints) is a
// separate concern; this enforces only what the pipeline relies on.
func (c Configuration) Validate() error {
	const op = "configuration.validate"

	if c.LengthMM <= 0 || c.WidthMM <= 0 || c.HeightMM <= 0 {
		return Invalid(op, "dimensions must be positive millimeter values")
	}
	if c.Quantity <= 0 {
		return Invalid(op, "quantity must be positive")
	}
	if len(c.CoatedSides) == 0 {
		return Invalid(op, "at least one coated side is required")
	}

	seen := make(map[Side]bool, len(c.CoatedSides))
	for _, s := range c.CoatedSides {
		if !s.Valid() {
			return Errorf(EINVALID, op, "invalid side: %s", s)
		}
		if seen[s] {
			return Errorf(EINVALID, op, "duplicate coated side: %s", s)
		}
		seen[s] = true
	}

	for i, h := range c.DrillHoles {
		if !h.Side.Valid() {
			return Errorf(EINVALID, op, "drill hole %d: invalid side: %s", i+1, h.Side)
		}
		if h.OffsetXMM < 0 || h.OffsetYMM < 0 {
			return Errorf(EINVALID, op, "drill hole %d: offsets must not be negative", i+1)
		}
		if h.DiameterMM <= 0 {
			return Errorf(EINVALID, op, "drill hole %d: diameter must be positive", i+1)
		}
	}

	return nil
}

// Describe builds the human-readable line item description used on quotes
// and exports, e.g. "Panel 1000x500x18 mm, 2 coated sides, qty 5".
// The quantity is passed in because line items can be re-quantified after
// the configuration was captured.
func (c Configuration) Describe(quantity int) string {
	desc := fmt.Sprintf("Panel %dx%dx%d mm, %d coated side", c.LengthMM, c.WidthMM, c.HeightMM, len(c.CoatedSides))
	if len(c.CoatedSides) != 1 {
		desc += "s"
	}
	if c.SurfaceStructure != "" {
		desc += ", structure " + c.SurfaceStructure
	}
	if n := len(c.DrillHoles); n > 0 {
		desc += fmt.Sprintf(", %d drilling", n)
		if n != 1 {
			desc += "s"
		}
	}
	desc += fmt.Sprintf(", qty %d", quantity)
	return desc
}

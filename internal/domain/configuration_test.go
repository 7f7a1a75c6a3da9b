package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkessler/panelwerk/internal/domain"
)

func Test_Configuration_Validate(t *testing.T) {
	valid := domain.Configuration{
		LengthMM:    1000,
		WidthMM:     500,
		HeightMM:    18,
		Quantity:    5,
		CoatedSides: []domain.Side{domain.SideTop, domain.SideBottom},
	}

	tests := []struct {
		name    string
		mutate  func(c *domain.Configuration)
		wantErr bool
	}{
		{
			name:    "valid configuration",
			mutate:  func(c *domain.Configuration) {},
			wantErr: false,
		},
		{
			name:    "zero length",
			mutate:  func(c *domain.Configuration) { c.LengthMM = 0 },
			wantErr: true,
		},
		{
			name:    "negative width",
			mutate:  func(c *domain.Configuration) { c.WidthMM = -10 },
			wantErr: true,
		},
		{
			name:    "zero height",
			mutate:  func(c *domain.Configuration) { c.HeightMM = 0 },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(c *domain.Configuration) { c.Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "no coated sides",
			mutate:  func(c *domain.Configuration) { c.CoatedSides = nil },
			wantErr: true,
		},
		{
			name: "invalid side",
			mutate: func(c *domain.Configuration) {
				c.CoatedSides = []domain.Side{"diagonal"}
			},
			wantErr: true,
		},
		{
			name: "duplicate side",
			mutate: func(c *domain.Configuration) {
				c.CoatedSides = []domain.Side{domain.SideTop, domain.SideTop}
			},
			wantErr: true,
		},
		{
			name: "all six sides",
			mutate: func(c *domain.Configuration) {
				c.CoatedSides = append([]domain.Side(nil), domain.Sides...)
			},
			wantErr: false,
		},
		{
			name: "valid drill hole",
			mutate: func(c *domain.Configuration) {
				c.DrillHoles = []domain.DrillHole{{Side: domain.SideTop, OffsetXMM: 50, OffsetYMM: 50, DiameterMM: 8}}
			},
			wantErr: false,
		},
		{
			name: "drill hole with invalid side",
			mutate: func(c *domain.Configuration) {
				c.DrillHoles = []domain.DrillHole{{Side: "edge", DiameterMM: 8}}
			},
			wantErr: true,
		},
		{
			name: "drill hole with negative offset",
			mutate: func(c *domain.Configuration) {
				c.DrillHoles = []domain.DrillHole{{Side: domain.SideTop, OffsetXMM: -1, DiameterMM: 8}}
			},
			wantErr: true,
		},
		{
			name: "drill hole with zero diameter",
			mutate: func(c *domain.Configuration) {
				c.DrillHoles = []domain.DrillHole{{Side: domain.SideTop, OffsetXMM: 10, OffsetYMM: 10}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Configuration_Describe(t *testing.T) {
	cfg := domain.Configuration{
		LengthMM:    1000,
		WidthMM:     500,
		HeightMM:    18,
		Quantity:    5,
		CoatedSides: []domain.Side{domain.SideTop, domain.SideBottom},
	}

	assert.Equal(t, "Panel 1000x500x18 mm, 2 coated sides, qty 5", cfg.Describe(5))

	// Quantity is caller-supplied so line edits regenerate the text.
	assert.Equal(t, "Panel 1000x500x18 mm, 2 coated sides, qty 2", cfg.Describe(2))

	cfg.CoatedSides = []domain.Side{domain.SideTop}
	cfg.SurfaceStructure = "brushed"
	cfg.DrillHoles = []domain.DrillHole{{Side: domain.SideTop, DiameterMM: 8}}
	assert.Equal(t, "Panel 1000x500x18 mm, 1 coated side, structure brushed, 1 drilling, qty 1", cfg.Describe(1))

	cfg.DrillHoles = append(cfg.DrillHoles, domain.DrillHole{Side: domain.SideBottom, DiameterMM: 5})
	assert.Contains(t, cfg.Describe(1), "2 drillings")
}

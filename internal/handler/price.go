package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mkessler/panelwerk/internal/domain"
	"github.com/mkessler/panelwerk/internal/pricing"
)

// configurationRequest is the inbound configuration DTO. Structural
// validation happens here at the boundary; the domain type re-checks only
// its own invariants.
type configurationRequest struct {
	LengthMM         int                `json:"lengthMm" validate:"required,gt=0"`
	WidthMM          int                `json:"widthMm" validate:"required,gt=0"`
	HeightMM         int                `json:"heightMm" validate:"required,gt=0"`
	Quantity         int                `json:"quantity" validate:"required,gt=0"`
	CoatedSides      []string           `json:"coatedSides" validate:"required,min=1,unique,dive,oneof=top bottom front back left right"`
	SurfaceStructure string             `json:"surfaceStructure"`
	DrillHoles       []drillHoleRequest `json:"drillHoles" validate:"dive"`
}

type drillHoleRequest struct {
	Side       string `json:"side" validate:"required,oneof=top bottom front back left right"`
	OffsetXMM  int    `json:"offsetXMm" validate:"gte=0"`
	OffsetYMM  int    `json:"offsetYMm" validate:"gte=0"`
	DiameterMM int    `json:"diameterMm" validate:"required,gt=0"`
}

func (r configurationRequest) toDomain() domain.Configuration {
	sides := make([]domain.Side, len(r.CoatedSides))
	for i, s := range r.CoatedSides {
		sides[i] = domain.Side(s)
	}

	var holes []domain.DrillHole
	for _, h := range r.DrillHoles {
		holes = append(holes, domain.DrillHole{
			Side:       domain.Side(h.Side),
			OffsetXMM:  h.OffsetXMM,
			OffsetYMM:  h.OffsetYMM,
			DiameterMM: h.DiameterMM,
		})
	}

	return domain.Configuration{
		LengthMM:         r.LengthMM,
		WidthMM:          r.WidthMM,
		HeightMM:         r.HeightMM,
		Quantity:         r.Quantity,
		CoatedSides:      sides,
		SurfaceStructure: r.SurfaceStructure,
		DrillHoles:       holes,
	}
}

// PriceHandler serves price previews for configurations.
type PriceHandler struct {
	calc     *pricing.Calculator
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPriceHandler creates a new price preview handler.
func NewPriceHandler(calc *pricing.Calculator, validate *validator.Validate, logger *slog.Logger) *PriceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceHandler{
		calc:     calc,
		validate: validate,
		logger:   logger,
	}
}

// Preview handles POST /api/price
func (h *PriceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req configurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.Invalid("price.preview", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, domain.Invalid("price.preview", err.Error()))
		return
	}

	cfg := req.toDomain()
	if err := cfg.Validate(); err != nil {
		respondError(w, err)
		return
	}

	result := h.calc.Price(cfg)
	respondJSON(w, http.StatusOK, result)
}

package safety

import (
	"fmt"
	"math"
	"strings"

	"Structura/internal/calc/field"
)

const (
	StatusSafe    = "Safe"
	StatusWarning = "Warning"

	safeMessage = "No major structural errors detected based on provided parameters (Sync: RCC Spreadsheets v2.0)."
	woodMessage = "Safety Warning: Wooden structures above 5 floors require specialized fire and structural review."
	spanMessage = "Safety Warning: Large spans (>15m) without intermediate columns require advanced structural verification (RCC21 Subframe Analysis)."

	// L/16 rule of thumb for RC beam depth (RCC41).
	depthRatio    = 16.0
	maxWoodFloors = 5
	maxClearSpanM = 15.0
)

type Input struct {
	Span     field.Number `json:"span"`
	Depth    field.Number `json:"depth"`
	Material field.Text   `json:"material"`
	Floors   field.Number `json:"floors"`
}

type Result struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Params is Input with every default applied. Floors is a whole number kept
// in float space so that any finite input compares correctly.
type Params struct {
	SpanM    float64
	DepthM   float64
	Material string
	Floors   float64
}

func Normalize(in Input) Params {
	return Params{
		SpanM:    in.Span.Or(0),
		DepthM:   in.Depth.Or(0),
		Material: strings.ToLower(string(in.Material)),
		Floors:   math.Trunc(in.Floors.Or(1)),
	}
}

func Evaluate(in Input) Result {
	return Check(Normalize(in))
}

// Check runs every rule; a failing rule never prevents the later ones.
func Check(p Params) Result {
	var errs []string

	if p.SpanM > 0 && p.DepthM > 0 {
		minDepth := p.SpanM / depthRatio
		if p.DepthM < minDepth {
			errs = append(errs, fmt.Sprintf(
				"Safety Warning (BS8110/EC2): Beam depth (%sm) is likely insufficient for a %sm span. Recommended: at least %.2fm according to RCC41 guidelines.",
				field.Format(p.DepthM), field.Format(p.SpanM), minDepth))
		}
	}

	if p.Material == "wood" && p.Floors > maxWoodFloors {
		errs = append(errs, woodMessage)
	}

	if p.SpanM > maxClearSpanM {
		errs = append(errs, spanMessage)
	}

	if len(errs) == 0 {
		return Result{Status: StatusSafe, Message: safeMessage}
	}
	return Result{Status: StatusWarning, Errors: errs}
}

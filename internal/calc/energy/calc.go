package energy

import (
	"errors"
	"math"
	"strings"

	"Structura/internal/calc/field"
)

const (
	InsulationHigh   = "high"
	InsulationMedium = "medium"
	InsulationLow    = "low"

	CategorySustainable = "Sustainable (A/B)"
	CategoryAverage     = "Average (C/D)"
	CategoryHigh        = "High Consumption (E-G)"

	defaultAreaM2 = 35.0

	internalTempC   = 21.0
	externalTempC   = 10.0
	referenceAreaM2 = 50.0
	baseGainsW      = 400.0
	waterKWh        = 2000.0
	miscKWh         = 1500.0
	pricePerKWh     = 0.15
	deflator        = 0.47
	areaOffsetM2    = 45.0

	logBranchECF = 3.5

	advicePrefix = "OpenBEM/SAP Estimate: "
)

var ErrDomain = errors.New("energy cost factor outside rating domain")

var lossFactors = map[string]float64{
	InsulationHigh:   0.5,
	InsulationMedium: 1.2,
	InsulationLow:    2.5,
}

var advice = map[string]string{
	CategorySustainable: advicePrefix + "Highly efficient building. Consider solar PV and heat recovery ventilation to approach net zero.",
	CategoryAverage:     advicePrefix + "Average performance. Upgrading insulation and glazing would move the building into band B.",
	CategoryHigh:        advicePrefix + "High energy consumption. Prioritise fabric insulation upgrades and draught proofing before adding renewables.",
}

type Input struct {
	Area       field.Number `json:"area"`
	Insulation field.Text   `json:"insulation"`
}

type Result struct {
	AnnualEnergyKWh float64 `json:"annual_energy_kwh"`
	SAPRating       float64 `json:"sap_rating"`
	Advice          string  `json:"advice"`
	Category        string  `json:"category"`
}

type Params struct {
	AreaM2     float64
	Insulation string
}

// Breakdown exposes every intermediate of the estimate, unrounded.
type Breakdown struct {
	LossFactor      float64
	HeatLossCoeff   float64
	HeatDemandKWh   float64
	GainsKWh        float64
	Utilization     float64
	UsefulGainsKWh  float64
	SpaceHeatingKWh float64
	WaterHeatingKWh float64
	MiscKWh         float64
	TotalKWh        float64
	TotalCost       float64
	ECF             float64
	SAPRating       float64
}

// Normalize defaults the area to 35 m² and the insulation grade to medium.
// Negative areas are clamped to zero, which keeps the cost factor finite
// and non-negative.
func Normalize(in Input) Params {
	area := in.Area.Or(defaultAreaM2)
	if area < 0 {
		area = 0
	}
	grade := strings.ToLower(strings.TrimSpace(string(in.Insulation)))
	if _, ok := lossFactors[grade]; !ok {
		grade = InsulationMedium
	}
	return Params{AreaM2: area, Insulation: grade}
}

func Estimate(p Params) Breakdown {
	var b Breakdown
	scale := p.AreaM2 / referenceAreaM2

	b.LossFactor = lossFactors[p.Insulation]
	b.HeatLossCoeff = b.LossFactor * p.AreaM2
	b.HeatDemandKWh = b.HeatLossCoeff * (internalTempC - externalTempC) * 24 * 365 / 1000

	base := baseGainsW * scale
	b.GainsKWh = base * 24 * 365 / 1000
	b.Utilization = 0.7
	if p.Insulation == InsulationHigh {
		b.Utilization = 0.85
	}
	b.UsefulGainsKWh = b.GainsKWh * b.Utilization

	b.SpaceHeatingKWh = math.Max(0, b.HeatDemandKWh-b.UsefulGainsKWh)
	b.WaterHeatingKWh = waterKWh * scale
	b.MiscKWh = miscKWh * scale
	b.TotalKWh = b.SpaceHeatingKWh + b.WaterHeatingKWh + b.MiscKWh

	b.TotalCost = b.TotalKWh * pricePerKWh
	b.ECF = (b.TotalCost * deflator) / (p.AreaM2 + areaOffsetM2)

	rating, err := SAPRating(b.ECF)
	if err != nil {
		rating, _ = SAPRating(0)
	}
	b.SAPRating = rating
	return b
}

// SAPRating converts an energy cost factor into a rating. Non-finite or
// negative factors are rejected with ErrDomain.
func SAPRating(ecf float64) (float64, error) {
	if math.IsNaN(ecf) || math.IsInf(ecf, 0) || ecf < 0 {
		return 0, ErrDomain
	}
	if ecf >= logBranchECF {
		return 117 - 121*math.Log10(ecf), nil
	}
	return 100 - 13.95*ecf, nil
}

func Categorize(sap float64) string {
	switch {
	case sap > 80:
		return CategorySustainable
	case sap > 50:
		return CategoryAverage
	default:
		return CategoryHigh
	}
}

func Evaluate(in Input) Result {
	b := Estimate(Normalize(in))
	category := Categorize(b.SAPRating)
	return Result{
		AnnualEnergyKWh: round(b.TotalKWh, 2),
		SAPRating:       round(b.SAPRating, 1),
		Advice:          advice[category],
		Category:        category,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

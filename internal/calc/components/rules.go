package components

import (
	"fmt"

	"Structura/internal/calc/field"
)

// Values carries a rule's two measured inputs and the result of its
// Computed expression.
type Values struct {
	A, B     float64
	Computed float64
}

// Rule is one row of the component table. Computed and Fails are CEL
// expressions over the two named fields; Fails may also read `computed`.
type Rule struct {
	Key      string
	Name     string
	Code     string
	Fields   [2]string
	Computed string
	Fails    string
	Warning  func(v Values) string
	Safe     string
}

var table = []Rule{
	{
		Key:      "slab",
		Name:     "One-way Slab",
		Code:     "RCC31",
		Fields:   [2]string{"thickness", "span"},
		Computed: "span * 1000.0 / 20.0",
		Fails:    "thickness < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC31): Slab thickness (%smm) is less than recommended %.0fmm for a %sm span (L/20 rule).",
				field.Format(v.A), v.Computed, field.Format(v.B))
		},
		Safe: "Safe: Slab thickness meets standard RCC31/BS8110 requirements.",
	},
	{
		Key:      "flat_slab",
		Name:     "Flat Slab",
		Code:     "RCC32",
		Fields:   [2]string{"thickness", "span"},
		Computed: "span * 1000.0 / 24.0",
		Fails:    "thickness < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC32): Flat slab thickness (%smm) is less than recommended %.0fmm for a %sm span (L/24 rule). Check punching shear at columns.",
				field.Format(v.A), v.Computed, field.Format(v.B))
		},
		Safe: "Safe: Flat slab thickness meets RCC32 span/depth guidance.",
	},
	{
		Key:      "ribbed_slab",
		Name:     "Ribbed Slab",
		Code:     "RCC33",
		Fields:   [2]string{"depth", "span"},
		Computed: "span * 1000.0 / 18.0",
		Fails:    "depth < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC33): Ribbed slab depth (%smm) is less than recommended %.0fmm for a %sm span (L/18 rule).",
				field.Format(v.A), v.Computed, field.Format(v.B))
		},
		Safe: "Safe: Ribbed slab depth meets RCC33 span/depth guidance.",
	},
	{
		Key:      "beam",
		Name:     "Continuous Beam",
		Code:     "RCC41",
		Fields:   [2]string{"depth", "span"},
		Computed: "span * 1000.0 / 12.0",
		Fails:    "depth < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC41): Continuous beam depth (%smm) is less than recommended %.0fmm for a %sm span (L/12 rule). Deflection control is critical.",
				field.Format(v.A), v.Computed, field.Format(v.B))
		},
		Safe: "Safe: Continuous beam depth meets RCC41 span/depth guidance.",
	},
	{
		Key:      "wide_beam",
		Name:     "Wide Beam",
		Code:     "RCC42",
		Fields:   [2]string{"width", "depth"},
		Computed: "2.0 * depth",
		Fails:    "width < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Info (RCC42): Width (%smm) is less than twice the depth (%.0fmm); this section behaves as a standard beam, not a wide beam.",
				field.Format(v.A), v.Computed)
		},
		Safe: "Safe: Wide beam geometry confirmed (width at least twice the depth, RCC42).",
	},
	{
		Key:      "column",
		Name:     "Column",
		Code:     "RCC51",
		Fields:   [2]string{"height", "width"},
		Computed: "height * 1000.0 / width",
		Fails:    "computed > 15.0",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC51): Column is slender (Ratio: %.1f). May require buckling analysis according to EC2. Consider increasing width.",
				v.Computed)
		},
		Safe: "Safe: Column slenderness ratio is within normal limits for short columns (RCC51).",
	},
	{
		Key:      "wall",
		Name:     "Retaining Wall",
		Code:     "RCC61",
		Fields:   [2]string{"height", "base"},
		Computed: "0.4 * height",
		Fails:    "base < computed",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC61): Retaining wall base (%sm) is narrower than the recommended %.2fm for a %sm high wall (0.4H rule). Check overturning and sliding.",
				field.Format(v.B), v.Computed, field.Format(v.A))
		},
		Safe: "Safe: Retaining wall base width satisfies the RCC61 0.4H rule.",
	},
	{
		Key:      "stair",
		Name:     "Stair",
		Code:     "RCC72",
		Fields:   [2]string{"riser", "tread"},
		Computed: "2.0 * riser + tread",
		Fails:    "computed < 600.0 || computed > 650.0",
		Warning: func(v Values) string {
			return fmt.Sprintf("Warning (RCC72): Stair dimensions may be uncomfortable or unsafe (2R+T = %.0f). Target: 600-650mm.",
				v.Computed)
		},
		Safe: "Safe: Stair dimensions comply with the 2R+T comfort rule (RCC72).",
	},
}

// Rules returns a copy of the component table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

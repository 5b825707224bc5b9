package domain

// ConditionMode selects the grading scale used by the condition endpoint.
type ConditionMode string

const (
	ConditionEbay ConditionMode = "ebay"
	ConditionPSA  ConditionMode = "psa"
	ConditionBGS  ConditionMode = "bgs"
	ConditionSGC  ConditionMode = "sgc"
	ConditionCGC  ConditionMode = "cgc"
)

// Valid reports whether the mode is one the service understands.
func (m ConditionMode) Valid() bool {
	switch m {
	case ConditionEbay, ConditionPSA, ConditionBGS, ConditionSGC, ConditionCGC:
		return true
	default:
		return false
	}
}

// GradeResult is the corner/edge/surface/centering breakdown.
type GradeResult struct {
	Corners   *float64 `json:"corners,omitempty"`
	Edges     *float64 `json:"edges,omitempty"`
	Surface   *float64 `json:"surface,omitempty"`
	Centering *float64 `json:"centering,omitempty"`
	Final     *float64 `json:"final,omitempty"`
	Condition string   `json:"condition,omitempty"`
}

// ConditionResult is a condition label on the requested scale.
type ConditionResult struct {
	Label         string   `json:"label,omitempty"`
	ScaleValue    *float64 `json:"scaleValue,omitempty"`
	MaxScaleValue *float64 `json:"maxScaleValue,omitempty"`
	Mode          string   `json:"mode,omitempty"`
}

// CenteringResult holds the centering score and ratios.
type CenteringResult struct {
	Centering *float64 `json:"centering,omitempty"`
	LeftRight string   `json:"leftRight,omitempty"`
	TopBottom string   `json:"topBottom,omitempty"`
}

// Grading section names, used as keys of GradingReport.Errors.
const (
	SectionGrade     = "grade"
	SectionCondition = "condition"
	SectionCentering = "centering"
)

// GradingReport aggregates the three independent grading calls.
// A failed call leaves its section nil and records the reason in Errors.
type GradingReport struct {
	Grade     *GradeResult      `json:"grade,omitempty"`
	Condition *ConditionResult  `json:"condition,omitempty"`
	Centering *CenteringResult  `json:"centering,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Complete reports whether all three sections are present.
func (r *GradingReport) Complete() bool {
	return r != nil && r.Grade != nil && r.Condition != nil && r.Centering != nil
}

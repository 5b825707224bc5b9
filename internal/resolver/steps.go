package resolver

import (
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

// Step is one state of an identification attempt.
type Step int

const (
	StepOCR Step = iota
	StepDetect
	StepCategorize
	StepCategory
	StepAnalyze
	StepSlab
	StepOCRFallback
	StepDone
)

var stepNames = [...]string{
	StepOCR:         "ocr",
	StepDetect:      "detect",
	StepCategorize:  "categorize",
	StepCategory:    "category",
	StepAnalyze:     "analyze",
	StepSlab:        "slab",
	StepOCRFallback: "ocr_fallback",
	StepDone:        "done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// StepTrace records what one step did.
type StepTrace struct {
	Step       string               `json:"step"`
	Endpoint   recognition.Endpoint `json:"endpoint,omitempty"`
	Called     bool                 `json:"called"`
	Candidates int                  `json:"candidates"`
	Error      string               `json:"error,omitempty"`
	Duration   time.Duration        `json:"durationNs"`
}

// Outcome is the result of one identification attempt. A nil Card means
// nothing was identified, which is a normal result.
type Outcome struct {
	Card     *domain.Card         `json:"card,omitempty"`
	Strategy recognition.Endpoint `json:"strategy,omitempty"`
	Steps    []StepTrace          `json:"steps"`
}

// Identified reports whether a card was produced.
func (o *Outcome) Identified() bool {
	return o != nil && o.Card != nil
}

// attempt is the per-call state threaded through the steps.
type attempt struct {
	image  recognition.Image
	tuning Tuning
	picker *domain.Picker

	keywords   []string
	ocr        *recognition.Record
	analyzeAll bool
	category   recognition.Category

	card     *domain.Card
	strategy recognition.Endpoint
	steps    []StepTrace
}

// next is the transition function. Any produced card ends the attempt. The
// category step runs even when categorization failed.
func next(step Step, a *attempt) Step {
	if a.card != nil {
		return StepDone
	}
	switch step {
	case StepOCR:
		return StepDetect
	case StepDetect:
		return StepCategorize
	case StepCategorize:
		return StepCategory
	case StepCategory:
		return StepAnalyze
	case StepAnalyze:
		return StepSlab
	case StepSlab:
		return StepOCRFallback
	default:
		return StepDone
	}
}

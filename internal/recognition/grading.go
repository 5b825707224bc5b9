package recognition

import (
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// ParseGrade reads `records[0].grades`. ok is false when no field is usable.
func ParseGrade(resp *Response) (*domain.GradeResult, bool) {
	rec := resp.First()
	if rec == nil || !rec.OK() || len(rec.Grades) == 0 {
		return nil, false
	}
	g := rec.Grades
	res := &domain.GradeResult{
		Corners:   numberPtr(g["corners"]),
		Edges:     numberPtr(g["edges"]),
		Surface:   numberPtr(g["surface"]),
		Centering: numberPtr(g["centering"]),
		Final:     numberPtr(g["final"]),
		Condition: domain.Text(g["condition"]),
	}
	if res.Corners == nil && res.Edges == nil && res.Surface == nil &&
		res.Centering == nil && res.Final == nil && res.Condition == "" {
		return nil, false
	}
	return res, true
}

// ParseCondition reads the first Condition entry of the first object, else
// the record-level one.
func ParseCondition(resp *Response) (*domain.ConditionResult, bool) {
	rec := resp.First()
	if rec == nil || !rec.OK() {
		return nil, false
	}
	var entry map[string]any
	if len(rec.Objects) > 0 && len(rec.Objects[0].Condition) > 0 {
		entry = rec.Objects[0].Condition[0]
	} else if len(rec.Condition) > 0 {
		entry = rec.Condition[0]
	}
	if entry == nil {
		return nil, false
	}
	res := &domain.ConditionResult{
		Label:         domain.Text(entry["label"]),
		ScaleValue:    numberPtr(entry["scale_value"]),
		MaxScaleValue: numberPtr(entry["max_scale_value"]),
		Mode:          domain.Text(entry["mode"]),
	}
	if res.Label == "" && res.ScaleValue == nil {
		return nil, false
	}
	return res, true
}

// ParseCentering reads `grades.centering` and the ratios of `card[0].centering`.
func ParseCentering(resp *Response) (*domain.CenteringResult, bool) {
	rec := resp.First()
	if rec == nil || !rec.OK() {
		return nil, false
	}
	res := &domain.CenteringResult{Centering: numberPtr(rec.Grades["centering"])}
	if len(rec.CardInfo) > 0 {
		ratios := asMap(rec.CardInfo[0]["centering"])
		res.LeftRight = domain.Text(ratios["left/right"])
		res.TopBottom = domain.Text(ratios["top/bottom"])
	}
	if res.Centering == nil && res.LeftRight == "" && res.TopBottom == "" {
		return nil, false
	}
	return res, true
}

// numberPtr accepts JSON numbers and strings that are numbers as a whole.
func numberPtr(v any) *float64 {
	if s, isString := v.(string); isString {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		v = f
	}
	f, ok := domain.Number(v)
	if !ok {
		return nil
	}
	return &f
}

/*
Copyright © 2026 the dispenseqc authors.
This file is part of dispenseqc.

dispenseqc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

dispenseqc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with dispenseqc.  If not, see <http://www.gnu.org/licenses/>.
*/

package dispenseqc

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// Grade is a quality rating of a run.
type Grade int

// Grades from best to worst.
const (
	Excellent Grade = iota
	Good
	NeedsImprovement
)

func (g Grade) String() string {
	switch g {
	case Excellent:
		return "EXCELLENT"
	case Good:
		return "GOOD"
	case NeedsImprovement:
		return "NEEDS IMPROVEMENT"
	default:
		return fmt.Sprintf("Grade(%d)", int(g))
	}
}

// Criteria holds the boolean expressions used to grade the precision and
// accuracy of a run. The expressions may use the variables MeanCV,
// MeanAccuracy, BestCV, WorstCV, RSquared and Units, and the function
// abs(x). A grade is given when its expression is true; the Excellent
// expression is tried first.
type Criteria struct {
	PrecisionExcellent string
	PrecisionGood      string
	AccuracyExcellent  string
	AccuracyGood       string
}

// DefaultCriteria are the grading thresholds used by dispenser
// validation: %CV below 5 is excellent and below 10 is good; mean
// %Accuracy within ±10 is excellent and within ±20 is good.
var DefaultCriteria = Criteria{
	PrecisionExcellent: "MeanCV < 5",
	PrecisionGood:      "MeanCV < 10",
	AccuracyExcellent:  "abs(MeanAccuracy) < 10",
	AccuracyGood:       "abs(MeanAccuracy) < 20",
}

// Assessment is the graded quality of a run.
type Assessment struct {
	Precision Grade
	Accuracy  Grade

	// Criteria are the expressions the grades were evaluated with.
	Criteria Criteria
}

var assessFuncs = map[string]govaluate.ExpressionFunction{
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("dispenseqc: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		v, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("dispenseqc: argument to 'abs' must be a number, got %v", arg[0])
		}
		return math.Abs(v), nil
	},
}

// Check parses every expression in c and reports the first invalid one.
func (c Criteria) Check() error {
	for _, e := range []struct{ name, expr string }{
		{"PrecisionExcellent", c.PrecisionExcellent},
		{"PrecisionGood", c.PrecisionGood},
		{"AccuracyExcellent", c.AccuracyExcellent},
		{"AccuracyGood", c.AccuracyGood},
	} {
		if _, err := govaluate.NewEvaluableExpressionWithFunctions(e.expr, assessFuncs); err != nil {
			return &ConfigError{Field: "Assessment." + e.name, Value: e.expr, Msg: err.Error()}
		}
	}
	return nil
}

// Assess grades a run summarized by s whose standard curve is m. A
// summary without units cannot be graded and yields a *NoUnitsError.
func (c Criteria) Assess(s Summary, m CalibrationModel) (Assessment, error) {
	if s.Units == 0 {
		return Assessment{Criteria: c, Precision: NeedsImprovement, Accuracy: NeedsImprovement}, &NoUnitsError{}
	}
	params := map[string]interface{}{
		"MeanCV":       s.MeanCV,
		"MeanAccuracy": s.MeanAccuracy,
		"BestCV":       s.BestCV,
		"WorstCV":      s.WorstCV,
		"RSquared":     m.RSquared,
		"Units":        float64(s.Units),
	}
	a := Assessment{Criteria: c}
	var err error
	if a.Precision, err = grade(c.PrecisionExcellent, c.PrecisionGood, params); err != nil {
		return a, fmt.Errorf("dispenseqc: assessing precision: %w", err)
	}
	if a.Accuracy, err = grade(c.AccuracyExcellent, c.AccuracyGood, params); err != nil {
		return a, fmt.Errorf("dispenseqc: assessing accuracy: %w", err)
	}
	return a, nil
}

func grade(excellent, good string, params map[string]interface{}) (Grade, error) {
	for i, expr := range []string{excellent, good} {
		ok, err := evalBool(expr, params)
		if err != nil {
			return NeedsImprovement, err
		}
		if ok {
			return Grade(i), nil
		}
	}
	return NeedsImprovement, nil
}

func evalBool(expr string, params map[string]interface{}) (bool, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, assessFuncs)
	if err != nil {
		return false, fmt.Errorf("parsing %q: %v", expr, err)
	}
	v, err := e.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %v", expr, err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q evaluates to %v, not true or false", expr, v)
	}
	return b, nil
}

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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dispenseqc/dispenseqc"
)

var rule = strings.Repeat("=", 50)

// WriteSummary prints a human-readable summary of res grouped by chip,
// followed by the run statistics and the quality assessment a.
func WriteSummary(w io.Writer, res *dispenseqc.Result, a dispenseqc.Assessment) {
	fmt.Fprintf(w, "\n%s\nQC ANALYSIS SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Standard Curve R²: %.4f\n", res.Model.RSquared)
	fmt.Fprintf(w, "Target Concentration: %g\n", res.Target)
	fmt.Fprintf(w, "\nUnit Performance:\n%s\n", strings.Repeat("-", 70))

	for _, c := range dispenseqc.SummarizeChips(res.Units) {
		fmt.Fprintf(w, "\n%s:\n", c.ChipID)
		for _, u := range dispenseqc.ChipUnits(res.Units, c.ChipID) {
			fmt.Fprintf(w, "  %-12s | CV: %6.2f%% | Accuracy: %8.2f%% | N: %3d | Cols: %s\n",
				u.Unit, u.CV, u.Accuracy, u.N, u.Columns)
		}
		fmt.Fprintf(w, "  %-12s | CV: %6.2f%% | Accuracy: %8.2f%% | N: %3d\n",
			"average", c.MeanCV, c.MeanAccuracy, c.N)
	}

	s := dispenseqc.Summarize(res.Units)
	fmt.Fprintf(w, "\nOverall Statistics:\n")
	fmt.Fprintf(w, "Average %%CV: %.2f%%\n", s.MeanCV)
	fmt.Fprintf(w, "Average %%Accuracy: %.2f%%\n", s.MeanAccuracy)
	fmt.Fprintf(w, "Best %%CV: %.2f%%\n", s.BestCV)
	fmt.Fprintf(w, "Worst %%CV: %.2f%%\n", s.WorstCV)
	fmt.Fprintf(w, "Linear Regression: %s\n", res.Model.Equation())

	fmt.Fprintf(w, "\nQuality Assessment:\n")
	fmt.Fprintf(w, "%s Precision: %s (%s)\n", mark(a.Precision), a.Precision, gradeRule(a.Precision,
		a.Criteria.PrecisionExcellent, a.Criteria.PrecisionGood))
	fmt.Fprintf(w, "%s Accuracy: %s (%s)\n", mark(a.Accuracy), a.Accuracy, gradeRule(a.Accuracy,
		a.Criteria.AccuracyExcellent, a.Criteria.AccuracyGood))
	fmt.Fprintf(w, "\n%s\n", Note)
}

func mark(g dispenseqc.Grade) string {
	if g == dispenseqc.NeedsImprovement {
		return "⚠"
	}
	return "✓"
}

// gradeRule returns the expression that produced grade g, or the negation
// of the good expression when neither matched.
func gradeRule(g dispenseqc.Grade, excellent, good string) string {
	switch g {
	case dispenseqc.Excellent:
		return excellent
	case dispenseqc.Good:
		return good
	default:
		return "not " + good
	}
}

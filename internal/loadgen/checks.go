package loadgen

import (
	"fmt"
	"io"
)

// Check is one readiness assertion over the finalized summary.
type Check struct {
	Name     string
	Passed   bool
	Observed string
}

// Evaluate applies the fixed readiness thresholds. All comparisons are
// strict by contract: a run sitting exactly on a threshold fails.
func Evaluate(s Summary) []Check {
	transportFailures := s.ErrorKinds[KindRefused] + s.ErrorKinds[KindReset] + s.ErrorKinds[KindTimeout]
	return []Check{
		{
			Name:     "Success Rate > 99%",
			Passed:   s.SuccessRate > 99,
			Observed: fmt.Sprintf("%.2f%%", s.SuccessRate),
		},
		{
			Name:     "P95 < 500ms",
			Passed:   s.P95Ms < 500,
			Observed: fmt.Sprintf("%.2fms", s.P95Ms),
		},
		{
			Name:     "P99 < 1000ms",
			Passed:   s.P99Ms < 1000,
			Observed: fmt.Sprintf("%.2fms", s.P99Ms),
		},
		{
			Name:     "No connection errors",
			Passed:   transportFailures == 0,
			Observed: fmt.Sprintf("%d refused/reset/timeout", transportFailures),
		},
	}
}

// AllPassed reports whether every check holds.
func AllPassed(checks []Check) bool {
	for _, c := range checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// PrintChecks writes the validation section of the report.
func PrintChecks(w io.Writer, checks []Check) {
	fmt.Fprintln(w, "=== Validation ===")
	for _, c := range checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s (observed %s)\n", mark, c.Name, c.Observed)
	}
	if AllPassed(checks) {
		fmt.Fprintln(w, "Result: READY")
	} else {
		fmt.Fprintln(w, "Result: NOT READY")
	}
}

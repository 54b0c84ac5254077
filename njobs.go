package settings

import (
	"encoding/json"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// njobsPattern accepts an optional decimal coefficient followed by an
// optional "n" marker (with optional "*" and spaces): "4", "n", "2n",
// "2*n", "2 * n", "0.5n".
var njobsPattern = regexp.MustCompile(`^(\d*(?:\.\d*)?)(\s*\*?\s*n)?$`)

// ParseNJobs interprets a job-count expression relative to the detected
// CPU core count. Integers are used as-is; floats truncate toward zero.
// Strings follow the coefficient/"n" grammar: "n" means all cores, "2n"
// twice the cores, "0.5n" half (truncated). A bare coefficient below 1
// without the "n" marker is still CPU-relative; a coefficient of 1 or
// more without "n" is an absolute count. Results of zero or below clamp
// to 1.
//
// On an 8-core machine:
//
//	ParseNJobs("0.5 * n") == 4
//	ParseNJobs("2n") == 16
//	ParseNJobs("n") == 8
//	ParseNJobs("4") == 4
func ParseNJobs(v any) (int, error) {
	return ParseNJobsWith(v, runtime.NumCPU())
}

// ParseNJobsWith is ParseNJobs against an explicit core count.
func ParseNJobsWith(v any, available int) (int, error) {
	n, _, _, err := parseNJobs(v, available)
	return n, err
}

func effectiveCPUCount(available int) int {
	if available < 1 {
		return runtime.NumCPU()
	}
	return available
}

// parseNJobs reports whether the result was clamped to 1 or exceeds the
// available cores, so callers can surface advisory diagnostics.
func parseNJobs(v any, available int) (n int, clamped, oversubscribed bool, err error) {
	cores := effectiveCPUCount(available)

	var jobs float64
	switch t := v.(type) {
	case int:
		jobs = float64(t)
	case int8:
		jobs = float64(t)
	case int16:
		jobs = float64(t)
	case int32:
		jobs = float64(t)
	case int64:
		jobs = float64(t)
	case uint:
		jobs = float64(t)
	case uint64:
		jobs = float64(t)
	case float32:
		jobs = float64(int(t)) // Truncate toward zero
	case float64:
		jobs = float64(int(t))
	case json.Number:
		jobs, err = njobsExpr(t.String(), cores)
	case string:
		jobs, err = njobsExpr(t, cores)
	default:
		err = fmt.Errorf("n_jobs value must be a string, int, or float, got %T", v)
	}
	if err != nil {
		return 0, false, false, err
	}

	n = int(jobs) // Truncate toward zero after any multiplication
	if n <= 0 {
		return 1, true, false, nil
	}
	return n, false, n > cores, nil
}

// njobsExpr evaluates the coefficient/"n" grammar against the core count.
func njobsExpr(s string, cores int) (float64, error) {
	m := njobsPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("unable to parse n_jobs=%q", s)
	}

	coeff := 1.0
	if m[1] != "" {
		var err error
		coeff, err = strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("unable to parse n_jobs=%q: %w", s, err)
		}
	}

	switch {
	case m[2] != "":
		return coeff * float64(cores), nil
	case coeff < 1:
		// A fractional coefficient is CPU-relative even without the "n" marker.
		return coeff * float64(cores), nil
	default:
		return float64(int(coeff)), nil
	}
}

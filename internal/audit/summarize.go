package audit

import (
	"fmt"
	"sort"
	"strings"
)

// maxSolverErrorLen bounds per-month solver errors in the audit payload.
const maxSolverErrorLen = 400

// MonthSummary is the compact per-period record kept in the audit log.
type MonthSummary struct {
	Status      string `json:"status"`
	SolverError string `json:"solver_error,omitempty"`
	Autorelax   any    `json:"autorelax,omitempty"`
}

// MonthsSummary reduces raw multi-period solver stats to a stable shape.
// GreedyPeriods lists periods where the solver reported an error (greedy
// fallback used); InfeasiblePeriods lists periods whose status carries an
// infeasibility marker.
type MonthsSummary struct {
	Status            string                  `json:"status"`
	GreedyPeriods     []string                `json:"greedy_months"`
	InfeasiblePeriods []string                `json:"infeasible_months"`
	Months            map[string]MonthSummary `json:"months"`
}

// SummarizeStats is a total function of its input: any non-map value yields
// {Status: "UNKNOWN"}, a malformed month value is kept as its string form.
func SummarizeStats(stats any) *MonthsSummary {
	m, ok := stats.(map[string]any)
	if !ok {
		return &MonthsSummary{Status: "UNKNOWN"}
	}

	out := &MonthsSummary{
		Status:            stringOrEmpty(m["status"]),
		GreedyPeriods:     []string{},
		InfeasiblePeriods: []string{},
		Months:            map[string]MonthSummary{},
	}

	months, _ := m["months"].(map[string]any)
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := months[key]
		mv, ok := val.(map[string]any)
		if !ok {
			out.Months[key] = MonthSummary{Status: fmt.Sprint(val)}
			continue
		}

		status := stringOrEmpty(mv["status"])
		solverErr := ""
		if se := mv["solver_error"]; se != nil {
			if s := fmt.Sprint(se); s != "" {
				solverErr = s
				out.GreedyPeriods = append(out.GreedyPeriods, key)
			}
		}
		if strings.Contains(strings.ToUpper(status), "INFEAS") {
			out.InfeasiblePeriods = append(out.InfeasiblePeriods, key)
		}
		if len(solverErr) > maxSolverErrorLen {
			solverErr = solverErr[:maxSolverErrorLen]
		}

		out.Months[key] = MonthSummary{
			Status:      status,
			SolverError: solverErr,
			Autorelax:   mv["autorelax"],
		}
	}

	return out
}

func stringOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

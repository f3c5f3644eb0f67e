package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rlicordari/turni-autogen-experimental/internal/carryover"
	"github.com/rlicordari/turni-autogen-experimental/internal/fascia"
	"github.com/rlicordari/turni-autogen-experimental/internal/model"
	"github.com/rlicordari/turni-autogen-experimental/internal/rules"
	"github.com/rlicordari/turni-autogen-experimental/internal/unavail"
)

// Solver is the boundary to the external optimizing engine. When no solver
// is wired in, the greedy fallback produces the roster.
type Solver interface {
	Solve(in Input) (Assignment, error)
}

// Input is everything one generation needs.
type Input struct {
	Period         model.Period
	Rules          *rules.Config
	Unavailability []unavail.Row
	Carryover      map[model.Period]*carryover.Record
}

// Assignment maps day-of-month -> duty name -> doctor.
type Assignment map[int]map[string]string

// MonthStats is the per-period outcome reported to the caller.
type MonthStats struct {
	Status      string `json:"status"`
	SolverError string `json:"solver_error,omitempty"`
	Autorelax   any    `json:"autorelax,omitempty"`
}

// Stats is the multi-period result shape consumed by the audit summarizer.
type Stats struct {
	Status string                `json:"status"`
	Months map[string]MonthStats `json:"months"`
}

// AsMap renders stats in the loose shape the audit summarizer accepts.
func (s *Stats) AsMap() map[string]any {
	months := make(map[string]any, len(s.Months))
	for k, v := range s.Months {
		m := map[string]any{"status": v.Status}
		if v.SolverError != "" {
			m["solver_error"] = v.SolverError
		}
		if v.Autorelax != nil {
			m["autorelax"] = v.Autorelax
		}
		months[k] = m
	}
	return map[string]any{"status": s.Status, "months": months}
}

// Generator produces rosters, preferring the external solver and falling
// back to greedy assignment.
type Generator struct {
	solver Solver
}

// NewGenerator creates a generator. solver may be nil.
func NewGenerator(solver Solver) *Generator {
	return &Generator{solver: solver}
}

// Generate builds the roster for in.Period. The returned stats always
// contain an entry for the period; a solver failure is recorded there and
// the greedy fallback result is returned instead of an error.
func (g *Generator) Generate(in Input) (Assignment, *Stats, error) {
	if err := in.Period.Validate(); err != nil {
		return nil, nil, err
	}
	if in.Rules == nil {
		return nil, nil, fmt.Errorf("scheduler: rules required")
	}

	stats := &Stats{Months: map[string]MonthStats{}}
	key := in.Period.Key()

	if g.solver != nil {
		asg, err := g.solver.Solve(in)
		if err == nil {
			stats.Status = "OK"
			stats.Months[key] = MonthStats{Status: "OK"}
			return asg, stats, nil
		}
		asg, unfilled := greedyAssign(in)
		stats.Months[key] = monthStatsForGreedy(unfilled, err.Error())
		stats.Status = stats.Months[key].Status
		return asg, stats, nil
	}

	asg, unfilled := greedyAssign(in)
	stats.Months[key] = monthStatsForGreedy(unfilled, "solver non disponibile: usato greedy")
	stats.Status = stats.Months[key].Status
	return asg, stats, nil
}

func monthStatsForGreedy(unfilled int, solverErr string) MonthStats {
	status := "OK(greedy)"
	if unfilled > 0 {
		status = fmt.Sprintf("INFEASIBLE(greedy): %d compiti scoperti", unfilled)
	}
	return MonthStats{Status: status, SolverError: solverErr}
}

// greedyAssign fills the roster day by day, duty by duty, always picking the
// least-loaded eligible doctor. Returns the assignment and the number of
// mandatory slots left uncovered (filled with the reserved sentinel).
func greedyAssign(in Input) (Assignment, int) {
	doctors := in.Rules.CollectDoctors()
	days := in.Period.Days()
	load := make(map[string]int, len(doctors))
	lastNight := make(map[string]int, len(doctors)) // doctor -> day of last night duty
	blockedDay1 := day1Blocks(in)
	unavailable := unavailabilityByDay(in)
	minGap := in.Rules.GlobalConstraints.NightSpacingDaysMin

	asg := make(Assignment, days)
	unfilled := 0

	for day := 1; day <= days; day++ {
		asg[day] = make(map[string]string, len(in.Rules.Duties))
		assignedToday := make(map[string]bool, len(in.Rules.Duties))

		for _, duty := range in.Rules.Duties {
			isNight := duty.Name == in.Rules.NightDuty

			pick := ""
			for _, doc := range candidatesByLoad(doctors, load) {
				if assignedToday[doc] {
					continue
				}
				if day == 1 && blockedDay1[doc] {
					continue
				}
				if bandBlocks(unavailable[day][doc], isNight) {
					continue
				}
				if last, ok := lastNight[doc]; ok {
					// No duty the morning after a night; nights spaced apart.
					if day == last+1 {
						continue
					}
					if isNight && day-last < minGap {
						continue
					}
				}
				pick = doc
				break
			}

			if pick == "" {
				if !duty.Optional {
					unfilled++
					asg[day][duty.Name] = rules.ReservedDoctor
				}
				continue
			}

			asg[day][duty.Name] = pick
			assignedToday[pick] = true
			load[pick]++
			if isNight {
				lastNight[pick] = day
			}
		}
	}

	return asg, unfilled
}

// candidatesByLoad orders doctors by current load, keeping the configured
// order among equals so results are deterministic.
func candidatesByLoad(doctors []string, load map[string]int) []string {
	out := append([]string(nil), doctors...)
	sort.SliceStable(out, func(i, j int) bool {
		return load[out[i]] < load[out[j]]
	})
	return out
}

// day1Blocks collects the carryover exclusions that apply to Day 1.
func day1Blocks(in Input) map[string]bool {
	out := map[string]bool{}
	if rec, ok := in.Carryover[in.Period]; ok && rec != nil {
		for _, name := range rec.BlockedDay1 {
			out[name] = true
		}
	}
	return out
}

// unavailabilityByDay indexes normalized bands per day and doctor.
func unavailabilityByDay(in Input) map[int]map[string]fascia.ShiftPeriod {
	out := map[int]map[string]fascia.ShiftPeriod{}
	prefix := in.Period.Key() + "-"
	for _, row := range in.Unavailability {
		if !strings.HasPrefix(row.Date, prefix) {
			continue
		}
		var day int
		if _, err := fmt.Sscanf(row.Date[len(prefix):], "%d", &day); err != nil || day < 1 {
			continue
		}
		if out[day] == nil {
			out[day] = map[string]fascia.ShiftPeriod{}
		}
		res := fascia.Normalize(row.Shift)
		out[day][row.Doctor] = widerBand(out[day][row.Doctor], res.Canonical)
	}
	return out
}

// widerBand keeps the more restrictive of two bands for the same day.
func widerBand(a, b fascia.ShiftPeriod) fascia.ShiftPeriod {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a == fascia.TuttoIlGiorno || b == fascia.TuttoIlGiorno || a != b {
		return fascia.TuttoIlGiorno
	}
	return a
}

// bandBlocks reports whether an unavailability band rules out a duty.
// Full-day blocks everything; Diurno and the two day bands block day
// duties; only Notte and full-day block the night duty.
func bandBlocks(band fascia.ShiftPeriod, isNight bool) bool {
	switch band {
	case "":
		return false
	case fascia.TuttoIlGiorno:
		return true
	case fascia.Notte:
		return isNight
	case fascia.Diurno, fascia.Mattina, fascia.Pomeriggio:
		return !isNight
	default:
		return true
	}
}

package fascia

import "strings"

// ShiftPeriod is one of the canonical unavailability bands.
type ShiftPeriod string

const (
	Mattina       ShiftPeriod = "Mattina"
	Pomeriggio    ShiftPeriod = "Pomeriggio"
	Notte         ShiftPeriod = "Notte"
	Diurno        ShiftPeriod = "Diurno"
	TuttoIlGiorno ShiftPeriod = "Tutto il giorno"
)

// Options lists the canonical bands in display order.
var Options = []ShiftPeriod{Mattina, Pomeriggio, Notte, Diurno, TuttoIlGiorno}

// Result is the outcome of normalizing one free-text band.
//
// Changed means the value was recognized but rewritten (e.g. "matt" -> "Mattina").
// Unknown means the value was not recognized at all; the canonical value falls
// back to "Tutto il giorno" so the entry is never silently dropped, but the
// caller should surface it for review.
type Result struct {
	Canonical ShiftPeriod `json:"canonical"`
	Changed   bool        `json:"changed"`
	Unknown   bool        `json:"unknown"`
}

// direct holds exact matches (after trim/casefold/whitespace collapse),
// covering the canonical names plus historical synonyms seen in the store.
var direct = map[string]ShiftPeriod{
	"mattina":         Mattina,
	"pomeriggio":      Pomeriggio,
	"notte":           Notte,
	"diurno":          Diurno,
	"tutto il giorno": TuttoIlGiorno,
	"tutto giorno":    TuttoIlGiorno,
	"all day":         TuttoIlGiorno,
	"giornata intera": TuttoIlGiorno,
}

// Normalize maps a free-text band to its canonical value.
//
// Empty/whitespace input passes through as empty (not an error). Exact matches
// win over substring rules; substring rules test full-day fragments before
// daytime before the three discrete bands, so phrases containing multiple
// fragments classify toward the wider band.
func Normalize(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{}
	}

	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")

	if canon, ok := direct[key]; ok {
		return Result{Canonical: canon, Changed: string(canon) != s}
	}

	switch {
	case strings.Contains(key, "tutto") || strings.Contains(key, "all") || strings.Contains(key, "intera"):
		return Result{Canonical: TuttoIlGiorno, Changed: true}
	case strings.Contains(key, "diurn") || strings.Contains(key, "daytime") || key == "d":
		return Result{Canonical: Diurno, Changed: true}
	case strings.Contains(key, "matt") || strings.Contains(key, "morning") || key == "am" || key == "a.m.":
		return Result{Canonical: Mattina, Changed: true}
	case strings.Contains(key, "pome") || strings.Contains(key, "pom") || strings.Contains(key, "afternoon") || key == "pm" || key == "p.m.":
		return Result{Canonical: Pomeriggio, Changed: true}
	case strings.Contains(key, "nott") || strings.Contains(key, "night") || key == "n":
		return Result{Canonical: Notte, Changed: true}
	}

	return Result{Canonical: TuttoIlGiorno, Changed: true, Unknown: true}
}

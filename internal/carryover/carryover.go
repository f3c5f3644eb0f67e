package carryover

import (
	"fmt"
	"strings"
	"time"

	"github.com/rlicordari/turni-autogen-experimental/internal/model"
)

// Source records which input(s) produced a carryover record.
type Source string

const (
	SourceExtracted Source = "extracted"
	SourceManual    Source = "manual"
	SourceMerged    Source = "merged"
)

// Record carries the inter-month constraint for one period: the doctors that
// worked the closing night of the previous period and therefore cannot work
// Day 1. Built fresh per generation run, never persisted.
type Record struct {
	// LastDate is the last roster date observed in the prior output file,
	// nil when the extractor could not determine one.
	LastDate *time.Time `json:"lastDate,omitempty"`
	// BlockedDay1 lists doctors excluded from every duty on Day 1,
	// insertion-ordered, duplicate-free, case-sensitive.
	BlockedDay1 []string `json:"blockedDay1"`
	Note        string   `json:"note,omitempty"`
	Source      Source   `json:"source"`
}

// Extraction is the contract of the prior-output parser. The parser itself
// is a collaborator (see the xlsx package); reconciliation only depends on
// this shape.
type Extraction struct {
	LastDate    *time.Time
	BlockedDay1 []string
	Note        string
}

// AsRecord wraps an extraction into a carryover record.
func (e *Extraction) AsRecord() *Record {
	if e == nil {
		return nil
	}
	return &Record{
		LastDate:    e.LastDate,
		BlockedDay1: append([]string(nil), e.BlockedDay1...),
		Note:        e.Note,
		Source:      SourceExtracted,
	}
}

// CollectManualNames merges the explicit multi-select names with a free-text
// comma-separated list: trim each, drop empties, deduplicate preserving
// first-seen order.
func CollectManualNames(selected []string, freeText string) []string {
	var names []string
	for _, n := range selected {
		if v := strings.TrimSpace(n); v != "" {
			names = append(names, v)
		}
	}
	for _, n := range strings.Split(freeText, ",") {
		if v := strings.TrimSpace(n); v != "" {
			names = append(names, v)
		}
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Reconcile merges the automatically extracted exclusion with the manual one
// into the single record for period. Warnings are advisory: generation
// continues, the caller shows them to the operator.
//
// The contiguity guard clears the extracted Day-1 exclusion when the prior
// file's last date is not exactly the day before the period starts; a stale
// or mismatched file must not block anyone in a period it does not precede.
// A missing last date skips the guard: the extractor already decided the
// file was relevant.
func Reconcile(period model.Period, extracted *Record, manualNames []string, existing *Record) (*Record, []string) {
	var warnings []string

	if extracted != nil && extracted.LastDate != nil {
		expected := period.FirstDay().AddDate(0, 0, -1)
		last := *extracted.LastDate
		if !sameDay(last, expected) {
			if len(extracted.BlockedDay1) > 0 {
				extracted.BlockedDay1 = nil
			}
			warnings = append(warnings, fmt.Sprintf(
				"il file precedente non è contiguo a %s: ultima data letta %s (attesa %s); blocco automatico sul Giorno 1 disattivato",
				period.Key(), last.Format("2006-01-02"), expected.Format("2006-01-02")))
		}
	}

	base := existing
	if base == nil {
		base = extracted
	} else if extracted != nil {
		base = mergeRecords(base, extracted)
	}

	if base == nil {
		if len(manualNames) == 0 {
			return nil, warnings
		}
		return &Record{
			BlockedDay1: append([]string(nil), manualNames...),
			Note:        "Carryover manuale (solo blocco giorno 1)",
			Source:      SourceManual,
		}, warnings
	}

	merged := false
	for _, n := range manualNames {
		if !contains(base.BlockedDay1, n) {
			base.BlockedDay1 = append(base.BlockedDay1, n)
			merged = true
		}
	}
	if merged && base.Source != SourceManual {
		base.Source = SourceMerged
	}
	return base, warnings
}

// mergeRecords unions b into a, preserving a's order and appending new names.
func mergeRecords(a, b *Record) *Record {
	for _, n := range b.BlockedDay1 {
		if !contains(a.BlockedDay1, n) {
			a.BlockedDay1 = append(a.BlockedDay1, n)
		}
	}
	if a.LastDate == nil {
		a.LastDate = b.LastDate
	}
	if a.Note == "" {
		a.Note = b.Note
	}
	a.Source = SourceMerged
	return a
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

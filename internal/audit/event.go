package audit

import (
	"fmt"
	"strings"
	"time"
)

// maxTracebackLen bounds the stack trace stored in a failure event.
const maxTracebackLen = 8000

// Event captures one generation attempt for the append-only audit log.
// Constructed once per run and never mutated after completion.
type Event struct {
	TimestampUTC string `json:"ts_utc"`
	RunID        string `json:"run_id"`
	SessionID    string `json:"session_id"`
	Operator     string `json:"operator,omitempty"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`

	TemplateMode        string `json:"template_mode"`
	TemplateFilename    string `json:"template_filename,omitempty"`
	TemplateBytes       int64  `json:"template_bytes,omitempty"`
	SheetNameUsed       string `json:"sheet_name_used,omitempty"`
	RulesSource         string `json:"rules_source"`
	UnavailabilityName  string `json:"unavailability_filename,omitempty"`
	UnavailabilityBytes int64  `json:"unavailability_bytes,omitempty"`

	Result    string  `json:"result"`
	DurationS float64 `json:"duration_s"`

	Stats *MonthsSummary `json:"stats,omitempty"`

	ErrorType string `json:"error_type,omitempty"`
	Error     string `json:"error,omitempty"`
	Traceback string `json:"traceback,omitempty"`
}

// NewEvent starts an event with identifiers and timestamp filled in.
func NewEvent(runID, sessionID, operator string, year, month int) *Event {
	return &Event{
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		RunID:        runID,
		SessionID:    sessionID,
		Operator:     strings.TrimSpace(operator),
		Year:         year,
		Month:        month,
	}
}

// Complete marks the event as a success with its stats summary.
func (e *Event) Complete(duration time.Duration, stats *MonthsSummary) {
	e.Result = "ok"
	e.DurationS = roundSeconds(duration)
	e.Stats = stats
}

// Fail marks the event as a failure, bounding the stored trace.
func (e *Event) Fail(duration time.Duration, err error, trace string) {
	e.Result = "error"
	e.DurationS = roundSeconds(duration)
	e.ErrorType = fmt.Sprintf("%T", err)
	e.Error = err.Error()
	if len(trace) > maxTracebackLen {
		trace = trace[:maxTracebackLen]
	}
	e.Traceback = trace
}

// Headline is the human-readable first line of the audit entry.
func (e *Event) Headline() string {
	result := e.Result
	if result == "" {
		result = "unknown"
	}
	operator := e.Operator
	if operator == "" {
		operator = "-"
	}
	return fmt.Sprintf("%s | %d-%02d | template=%s | sheet=%s | operator=%s",
		strings.ToUpper(result), e.Year, e.Month, e.TemplateMode, e.SheetNameUsed, operator)
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}

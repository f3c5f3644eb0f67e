package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies one roster cycle (year + month).
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod validates and builds a Period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks year/month ranges.
func (p Period) Validate() error {
	if p.Year <= 0 {
		return fmt.Errorf("invalid year: %d", p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid month: %d", p.Month)
	}
	return nil
}

// Key returns the canonical "YYYY-MM" form used as map key and in stats.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return p.Key()
}

// FirstDay returns the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last day of the period.
func (p Period) LastDay() time.Time {
	return p.FirstDay().AddDate(0, 1, -1)
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return p.LastDay().Day()
}

// Prev returns the preceding period.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// ParsePeriod parses a "YYYY-MM" key back into a Period.
func ParsePeriod(key string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period key: %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period year: %q", key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period month: %q", key)
	}
	return NewPeriod(year, month)
}

// MonthLabelIT returns the Italian month name used in sheet names and UI.
func MonthLabelIT(month int) string {
	names := map[int]string{
		1:  "Gennaio",
		2:  "Febbraio",
		3:  "Marzo",
		4:  "Aprile",
		5:  "Maggio",
		6:  "Giugno",
		7:  "Luglio",
		8:  "Agosto",
		9:  "Settembre",
		10: "Ottobre",
		11: "Novembre",
		12: "Dicembre",
	}
	if n, ok := names[month]; ok {
		return n
	}
	return strconv.Itoa(month)
}

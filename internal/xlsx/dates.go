package xlsx

import (
	"strconv"
	"strings"
	"time"
)

// cellDateLayouts covers the date renderings excelize produces for the
// formats seen in real ward files.
var cellDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01-02-06",
	"1/2/06",
	"02/01/06",
	"2/1/2006",
	"2006-01-02 15:04:05",
}

// parseCellDate interprets a cell value as a calendar date. Handles both
// formatted strings and raw Excel serial numbers.
func parseCellDate(val string) (time.Time, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range cellDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}

	// Excel serial date (days since 1899-12-30).
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}

	return time.Time{}, false
}

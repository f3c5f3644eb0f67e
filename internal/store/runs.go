package store

import (
	"fmt"
	"strings"
)

// RunRecord is one line of the local generation run log.
type RunRecord struct {
	ID           int64   `json:"id"`
	RunID        string  `json:"runId"`
	SessionID    string  `json:"sessionId"`
	Operator     string  `json:"operator"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	TemplateMode string  `json:"templateMode"`
	SheetName    string  `json:"sheetName"`
	RulesSource  string  `json:"rulesSource"`
	Result       string  `json:"result"`
	DurationS    float64 `json:"durationS"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	BlockedDay1  string  `json:"blockedDay1,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// CreateRun opens a run log entry, returning its row id.
func (s *Store) CreateRun(runID, sessionID, operator string, year, month int, templateMode, sheetName, rulesSource string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO generation_runs (run_id, session_id, operator, year, month, template_mode, sheet_name, rules_source, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'running')
	`, runID, sessionID, operator, year, month, templateMode, sheetName, rulesSource)
	if err != nil {
		return 0, fmt.Errorf("failed to create run log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run log id: %w", err)
	}
	return id, nil
}

// CompleteRun finishes a run log entry.
func (s *Store) CompleteRun(id int64, result string, durationS float64, errorMessage string, blockedDay1 []string) error {
	_, err := s.db.Exec(`
		UPDATE generation_runs SET
			result = ?,
			duration_s = ?,
			error_message = ?,
			blocked_day1 = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, result, durationS, errorMessage, strings.Join(blockedDay1, ", "), id)
	if err != nil {
		return fmt.Errorf("failed to update run log: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, session_id, COALESCE(operator, ''), year, month,
		       COALESCE(template_mode, ''), COALESCE(sheet_name, ''), COALESCE(rules_source, ''),
		       result, COALESCE(duration_s, 0), COALESCE(error_message, ''), COALESCE(blocked_day1, ''),
		       created_at
		FROM generation_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs failed: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.SessionID, &r.Operator, &r.Year, &r.Month,
			&r.TemplateMode, &r.SheetName, &r.RulesSource,
			&r.Result, &r.DurationS, &r.ErrorMessage, &r.BlockedDay1, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PeriodStat summarizes run activity for one period.
type PeriodStat struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	RunCount int `json:"runCount"`
	OKCount  int `json:"okCount"`
}

// ListRunPeriods lists the periods that have runs, newest first.
func (s *Store) ListRunPeriods() ([]PeriodStat, error) {
	rows, err := s.db.Query(`
		SELECT year, month, COUNT(1), SUM(CASE WHEN result = 'ok' THEN 1 ELSE 0 END)
		FROM generation_runs
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query run periods failed: %w", err)
	}
	defer rows.Close()

	var out []PeriodStat
	for rows.Next() {
		var it PeriodStat
		if err := rows.Scan(&it.Year, &it.Month, &it.RunCount, &it.OKCount); err != nil {
			return nil, fmt.Errorf("scan run periods failed: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

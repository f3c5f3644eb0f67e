package ghstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rlicordari/turni-autogen-experimental/internal/audit"
)

// SinkConfig locates the GitHub issue that collects audit events.
type SinkConfig struct {
	Token string
	Repo  string // "owner/repo"
	Issue int
}

// Configured reports whether audit events can be delivered at all.
func (c SinkConfig) Configured() bool {
	return c.Token != "" && c.Repo != "" && c.Issue > 0
}

// Delivery is the typed outcome of a fire-and-forget send. Callers may show
// Detail as an advisory message but never branch on it beyond that.
type Delivery struct {
	OK     bool
	Detail string
}

// Sink appends audit events as comments on a GitHub issue.
type Sink struct {
	cfg  SinkConfig
	http *http.Client
	base string
}

// NewSink creates the audit sink.
func NewSink(cfg SinkConfig) *Sink {
	return &Sink{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		base: "https://api.github.com",
	}
}

// Tell delivers one event: human-readable headline first, then the full
// event as fenced JSON. Failures are captured in the Delivery, never raised;
// the audit trail must not block a run.
func (s *Sink) Tell(event *audit.Event) Delivery {
	if !s.cfg.Configured() {
		return Delivery{OK: false, Detail: "github audit log not configured"}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return Delivery{OK: false, Detail: fmt.Sprintf("marshal event: %v", err)}
	}

	body := map[string]string{
		"body": event.Headline() + "\n\n```json\n" + string(payload) + "\n```",
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Delivery{OK: false, Detail: fmt.Sprintf("marshal comment: %v", err)}
	}

	u := fmt.Sprintf("%s/repos/%s/issues/%d/comments", s.base, s.cfg.Repo, s.cfg.Issue)
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return Delivery{OK: false, Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return Delivery{OK: false, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return Delivery{OK: false, Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, string(detail))}
	}
	return Delivery{OK: true, Detail: fmt.Sprintf("ok (%d)", resp.StatusCode)}
}

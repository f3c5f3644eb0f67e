package ghstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "turni-autogen"

var (
	// ErrNotFound is returned when the remote file does not exist yet.
	ErrNotFound = errors.New("ghstore: file not found")
	// ErrConflict is returned when a write carries a stale sha; the caller
	// re-reads and retries.
	ErrConflict = errors.New("ghstore: sha conflict")
)

// Config locates one file in a GitHub repository.
type Config struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	Path   string
}

// Configured reports whether the store can be used at all.
func (c Config) Configured() bool {
	return c.Token != "" && c.Owner != "" && c.Repo != "" && c.Path != ""
}

func (c Config) branch() string {
	if c.Branch == "" {
		return "main"
	}
	return c.Branch
}

// File is the result of a read: decoded text plus the version token ("sha")
// a subsequent write must present.
type File struct {
	Text string
	SHA  string
}

// Client talks to the GitHub contents API for one configured file.
type Client struct {
	cfg  Config
	http *http.Client
	base string
}

// NewClient creates a client with a bounded-timeout HTTP transport.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		base: "https://api.github.com",
	}
}

// GetFile reads the configured file. ErrNotFound when it does not exist.
// An unconfigured store behaves as permanently empty.
func (c *Client) GetFile() (*File, error) {
	if !c.cfg.Configured() {
		return nil, ErrNotFound
	}

	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.base, c.cfg.Owner, c.cfg.Repo, escapePath(c.cfg.Path), url.QueryEscape(c.cfg.branch()))

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ghstore: get %s: %w", c.cfg.Path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, apiError("get", resp)
	}

	var body struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		SHA      string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ghstore: decode response: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(stripNewlines(body.Content))
	if err != nil {
		return nil, fmt.Errorf("ghstore: decode content: %w", err)
	}
	return &File{Text: string(raw), SHA: body.SHA}, nil
}

// PutFile writes a full replacement payload. sha is the version token from
// the read ("" when creating); a stale sha yields ErrConflict.
func (c *Client) PutFile(text, sha, message string) error {
	if !c.cfg.Configured() {
		return errors.New("ghstore: store not configured")
	}

	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.base, c.cfg.Owner, c.cfg.Repo, escapePath(c.cfg.Path))

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(text)),
		"branch":  c.cfg.branch(),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ghstore: put %s: %w", c.cfg.Path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w (status %d)", ErrConflict, resp.StatusCode)
	default:
		return apiError("put", resp)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
}

func apiError(op string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
	return fmt.Errorf("ghstore: %s failed: status %d: %s", op, resp.StatusCode, string(detail))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func stripNewlines(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\r", "")
}

package espn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultBaseURL = "https://www.espn.com"

	// ScoreboardMarker is the global the scoreboard page assigns its game data to
	ScoreboardMarker = "window.espn.scoreboardData"

	maxBodyBytes = 8 << 20
)

var (
	ErrTransport        = errors.New("scoreboard transport error")
	ErrUnexpectedStatus = errors.New("unexpected scoreboard status")
	ErrMarkerNotFound   = errors.New("scoreboard data marker not found")
	ErrMalformedPayload = errors.New("malformed scoreboard payload")
)

// Fetcher returns the raw scoreboard document for a league path
type Fetcher interface {
	FetchScoreboard(ctx context.Context, path string) (map[string]interface{}, error)
}

// Config configures a scoreboard client
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client handles ESPN scoreboard requests
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	now        func() time.Time
}

// New creates a new ESPN scoreboard client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		now:       time.Now,
	}
}

// UserAgent returns the browser identity sent with every request
func (c *Client) UserAgent() string {
	return c.userAgent
}

// FetchScoreboard fetches the scoreboard for a league path such as
// "/college-football/scoreboard/_/group/80". The response may be the
// scoreboard page (data embedded in a script) or a plain JSON document.
func (c *Client) FetchScoreboard(ctx context.Context, path string) (map[string]interface{}, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("building scoreboard url: %w", err)
	}
	// cache buster
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().Unix(), 10))
	u.RawQuery = q.Encode()

	body, err := c.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return DecodeScoreboard(body)
}

// fetch makes an HTTP GET request and returns the body
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status=%d, body=%s", ErrUnexpectedStatus, resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	return body, nil
}

// DecodeScoreboard turns a response body into the scoreboard document.
// JSON bodies are decoded directly; anything else is treated as the
// scoreboard page and the embedded data object is extracted.
func DecodeScoreboard(body []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var result map[string]interface{}
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return result, nil
	}
	return ExtractEmbedded(trimmed)
}

// ExtractEmbedded finds the script assigning ScoreboardMarker and decodes
// the first JSON value after the assignment. Whatever follows it in the
// script is ignored.
func ExtractEmbedded(page []byte) (map[string]interface{}, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing page: %v", ErrMalformedPayload, err)
	}

	var script string
	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if idx := strings.Index(text, ScoreboardMarker); idx >= 0 {
			script = text[idx+len(ScoreboardMarker):]
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil, ErrMarkerNotFound
	}

	script = strings.TrimLeft(script, " \t\r\n")
	if !strings.HasPrefix(script, "=") {
		return nil, fmt.Errorf("%w: no assignment after marker", ErrMalformedPayload)
	}

	var result map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(script[1:]))
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: scoreboard data is null", ErrMalformedPayload)
	}
	return result, nil
}

// Events returns the event objects of a scoreboard document
func Events(scoreboard map[string]interface{}) ([]map[string]interface{}, error) {
	raw, ok := scoreboard["events"]
	if !ok {
		return nil, fmt.Errorf("%w: missing events", ErrMalformedPayload)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: events is %T", ErrMalformedPayload, raw)
	}

	events := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		event, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: events[%d] is %T", ErrMalformedPayload, i, item)
		}
		events = append(events, event)
	}
	return events, nil
}

// Package holiday provides the public holiday overlay. The feed is a soft
// dependency: a failed fetch leaves the lookup empty and never blocks or
// fails calendar rendering.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gomical/internal/log"
)

const fetchTimeout = 15 * time.Second

// maxFeedBytes caps the response body; the feed is a small flat JSON object.
const maxFeedBytes = 4 << 20

// Service fetches and caches the holiday map, keyed by "YYYY-MM-DD".
type Service struct {
	url    string
	client *http.Client

	mu   sync.RWMutex
	days map[string]string
}

// NewService creates a Service for the given feed URL.
func NewService(url string) *Service {
	return &Service{
		url:    url,
		client: &http.Client{Timeout: fetchTimeout},
		days:   map[string]string{},
	}
}

// Fetch performs a single GET of the feed and replaces the cached map on
// success. On any failure the previous map (initially empty) is kept and the
// error is returned for logging only; callers must not treat it as fatal.
func (s *Service) Fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("holiday: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("holiday: fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("holiday: fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("holiday: read body: %w", err)
	}

	var days map[string]string
	if err := json.Unmarshal(body, &days); err != nil {
		return fmt.Errorf("holiday: decode feed: %w", err)
	}

	s.mu.Lock()
	s.days = days
	s.mu.Unlock()

	log.Info("holiday feed loaded", "url", s.url, "entries", len(days))
	return nil
}

// Lookup returns the holiday name for the given date, if any.
func (s *Service) Lookup(t time.Time) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.days[t.Format("2006-01-02")]
	return name, ok
}

// Len returns the number of cached holiday entries.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days)
}

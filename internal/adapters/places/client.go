package places

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tabito/internal/adapters/observability"
	"tabito/internal/domain"
)

// MockIDPrefix marks synthetic results. Detail lookups must never hit the
// live endpoint for these ids.
const MockIDPrefix = "mock-"

const detailDelay = 500 * time.Millisecond

var (
	ErrUnauthorized = errors.New("places: unauthorized")
	ErrQuota        = errors.New("places: quota exceeded")
)

// Client talks to the commercial places text-search API. A missing key, a
// transport failure, or any non-OK/non-ZERO_RESULTS status degrades to the
// deterministic mock list; callers never see those failures.
type Client struct {
	base  string
	key   string
	hc    *http.Client
	rl    *rate.Limiter
	sleep func(context.Context, time.Duration) bool
	now   func() time.Time
}

type Option func(*Client)

// WithSleeper replaces the inter-call delay used between live detail lookups,
// so tests do not pay real wall-clock waits.
func WithSleeper(fn func(context.Context, time.Duration) bool) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithClock replaces the timestamp source that seeds mock data.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) { c.now = fn }
}

func New(base, key string, rps int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 5
	}
	c := &Client{
		base:  base,
		key:   key,
		hc:    &http.Client{Timeout: 20 * time.Second},
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
		sleep: sleepCtx,
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Status  string           `json:"status"`
	Results []map[string]any `json:"results"`
}

type detailsResponse struct {
	Status string         `json:"status"`
	Result map[string]any `json:"result"`
}

// Search runs the translated text search scoped to the prefecture. The only
// surfaced non-result is the explicit ZERO_RESULTS case (empty list, nil
// error); every other failure falls back to mock data.
func (c *Client) Search(ctx context.Context, query, prefecture string) ([]domain.RawPlace, error) {
	if c.key == "" {
		observability.ObserveFallback(string(domain.SourcePlaces), "no_credentials")
		return c.mockResults(query, prefecture), nil
	}

	q := url.Values{}
	q.Set("query", fmt.Sprintf("%s in %s, Japan", TranslateQuery(query), prefecture))
	q.Set("key", c.key)
	u := fmt.Sprintf("%s/textsearch/json?%s", c.base, q.Encode())

	var resp searchResponse
	if err := c.get(ctx, u, &resp); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("places search failed, using mock data")
		observability.ObserveFallback(string(domain.SourcePlaces), "transport")
		return c.mockResults(query, prefecture), nil
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []domain.RawPlace{}, nil
	default:
		log.Warn().Str("status", resp.Status).Str("query", query).Msg("places search non-OK status, using mock data")
		observability.ObserveFallback(string(domain.SourcePlaces), "status")
		return c.mockResults(query, prefecture), nil
	}

	out := make([]domain.RawPlace, 0, len(resp.Results))
	for _, r := range resp.Results {
		id, _ := r["place_id"].(string)
		if ref := photoReference(r); ref != "" {
			r["photo_url"] = c.photoURL(ref)
		}
		out = append(out, domain.RawPlace{Source: domain.SourcePlaces, ID: id, Fields: r})
	}
	return out, nil
}

// Details enriches one result with the detail endpoint. Synthetic ids are
// never looked up, and consecutive live calls are spaced by detailDelay to
// respect provider rate limits.
func (c *Client) Details(ctx context.Context, id string) (domain.RawPlace, bool) {
	if id == "" || strings.HasPrefix(id, MockIDPrefix) || c.key == "" {
		return domain.RawPlace{}, false
	}
	if !c.sleep(ctx, detailDelay) {
		return domain.RawPlace{}, false
	}

	q := url.Values{}
	q.Set("place_id", id)
	q.Set("fields", "formatted_phone_number,website,opening_hours,rating,user_ratings_total")
	q.Set("key", c.key)
	u := fmt.Sprintf("%s/details/json?%s", c.base, q.Encode())

	var resp detailsResponse
	if err := c.get(ctx, u, &resp); err != nil || resp.Status != "OK" || resp.Result == nil {
		return domain.RawPlace{}, false
	}
	return domain.RawPlace{Source: domain.SourcePlaces, ID: id, Fields: resp.Result}, true
}

func photoReference(r map[string]any) string {
	photos, ok := r["photos"].([]any)
	if !ok || len(photos) == 0 {
		return ""
	}
	first, ok := photos[0].(map[string]any)
	if !ok {
		return ""
	}
	ref, _ := first["photo_reference"].(string)
	return ref
}

func (c *Client) photoURL(ref string) string {
	return fmt.Sprintf("%s/photo?maxwidth=800&photo_reference=%s&key=%s", c.base, url.QueryEscape(ref), c.key)
}

// get performs a GET with client-side rate limiting, retries on 429/transient
// 5xx honoring Retry-After, and decodes JSON into out.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "tabito-importer/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && c.sleep(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("places", req.URL.Path, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = ErrQuota
			if i < 3 && c.sleep(ctx, wait) {
				continue
			}
			return lastErr

		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && c.sleep(ctx, wait) {
				continue
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% crypto/rand jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}

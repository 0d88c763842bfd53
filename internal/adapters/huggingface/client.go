// internal/adapters/huggingface/client.go
package huggingface

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"review_insights/internal/adapters/observability"
	"review_insights/internal/domain"
)

const DefaultModel = "distilbert-base-uncased-finetuned-sst-2-english"

var (
	ErrUnauthorized = errors.New("huggingface: unauthorized")
	ErrForbidden    = errors.New("huggingface: forbidden")
	ErrNotFound     = errors.New("huggingface: model not found")
)

// Client calls a hosted text-classification model. It satisfies domain.Predictor.
type Client struct {
	endpoint string
	model    string
	token    string
	hc       *http.Client
	rl       *rate.Limiter
	cb       *gobreaker.CircuitBreaker
}

func New(base, model, token string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("inference base URL is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if rps <= 0 {
		rps = 5
	}
	c := &Client{
		endpoint: strings.TrimRight(base, "/") + "/models/" + model,
		model:    model,
		token:    token,
		hc:       &http.Client{Timeout: 20 * time.Second},
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface-" + model,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		// a bad payload means the service is up
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrMalformedPrediction) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c, nil
}

// Predict sends one text and returns the top label.
// Waiting on the local rate limiter happens outside the breaker so that our
// own throttling never counts as a remote failure.
func (c *Client) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.Prediction{}, fmt.Errorf("rate limit: %w", err)
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		raw, err := c.post(ctx, map[string]string{"inputs": text})
		if err != nil {
			return nil, err
		}
		return parsePrediction(raw)
	})
	if err != nil {
		return domain.Prediction{}, err
	}
	return out.(domain.Prediction), nil
}

// parsePrediction accepts [{label,score},...] and [[{label,score},...]] and
// returns the first entry. Anything else is domain.ErrMalformedPrediction.
func parsePrediction(raw []byte) (domain.Prediction, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) == 0 {
		return domain.Prediction{}, fmt.Errorf("%w: %s", domain.ErrMalformedPrediction, snippet(raw))
	}
	first := outer[0]
	var nested []json.RawMessage
	if err := json.Unmarshal(first, &nested); err == nil {
		if len(nested) == 0 {
			return domain.Prediction{}, fmt.Errorf("%w: empty prediction list", domain.ErrMalformedPrediction)
		}
		first = nested[0]
	}
	var p struct {
		Label *string `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(first, &p); err != nil || p.Label == nil {
		return domain.Prediction{}, fmt.Errorf("%w: %s", domain.ErrMalformedPrediction, snippet(raw))
	}
	return domain.Prediction{Label: *p.Label, Score: p.Score}, nil
}

// post performs a POST with retries, returning the raw body. Callers hold a rate limiter slot.
// Retries on 429 and transient 5xx (503 while the model loads), honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-insights/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("huggingface", c.model, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("huggingface", c.model, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			return b, err

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
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

// backoff: 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

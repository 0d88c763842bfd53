package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"review_insights/internal/adapters/observability"
	"review_insights/internal/domain"
)

// MaxModelChars is how much of a review the model sees.
const MaxModelChars = 512

// SentimentClassifier labels one cleaned review. It never fails: anything the
// model cannot answer is reported as domain.Neutral.
type SentimentClassifier interface {
	Classify(ctx context.Context, cleanText string) domain.Sentiment
}

type ModelClassifier struct {
	model   domain.Predictor
	timeout time.Duration
	cache   domain.Cache // optional
	ttl     time.Duration
}

func NewModelClassifier(p domain.Predictor, timeout time.Duration) *ModelClassifier {
	return &ModelClassifier{model: p, timeout: timeout}
}

// WithCache memoizes successful predictions by text hash.
func (c *ModelClassifier) WithCache(cache domain.Cache, ttl time.Duration) *ModelClassifier {
	c.cache = cache
	c.ttl = ttl
	return c
}

func (c *ModelClassifier) Classify(ctx context.Context, cleanText string) domain.Sentiment {
	text := truncate(cleanText, MaxModelChars)

	key := predictionKey(text)
	if c.cache != nil {
		var cached domain.Sentiment
		if ok, _ := c.cache.Get(ctx, key, &cached); ok {
			if s, valid := domain.ParseSentiment(string(cached)); valid {
				observability.ObserveClassification("cached", s)
				return s
			}
		}
	}

	s, err := c.predict(ctx, text)
	if err != nil {
		log.Warn().Err(err).Int("chars", len(text)).Msg("classification degraded to NEUTRAL")
		observability.ObserveClassification("degraded", domain.Neutral)
		return domain.Neutral
	}
	observability.ObserveClassification("ok", s)

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, s, int(c.ttl.Seconds()))
	}
	return s
}

func (c *ModelClassifier) predict(ctx context.Context, text string) (domain.Sentiment, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	p, err := c.model.Predict(ctx, text)
	if err != nil {
		return "", err
	}
	s, ok := domain.ParseSentiment(p.Label)
	if !ok {
		return "", fmt.Errorf("label %q: %w", p.Label, domain.ErrMalformedPrediction)
	}
	return s, nil
}

// truncate keeps the first n characters (runes).
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func predictionKey(text string) string {
	sum := sha1.Sum([]byte(text))
	return "sentiment:" + hex.EncodeToString(sum[:])
}

package app_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"review_insights/internal/app"
	"review_insights/internal/domain"
)

func TestModelClassifier_Labels(t *testing.T) {
	cases := []struct {
		name string
		pred domain.Prediction
		err  error
		want domain.Sentiment
	}{
		{"positive", domain.Prediction{Label: "POSITIVE", Score: 0.98}, nil, domain.Positive},
		{"negative", domain.Prediction{Label: "NEGATIVE", Score: 0.51}, nil, domain.Negative},
		{"unknown label", domain.Prediction{Label: "LABEL_1"}, nil, domain.Neutral},
		{"empty label", domain.Prediction{}, nil, domain.Neutral},
		{"malformed", domain.Prediction{}, domain.ErrMalformedPrediction, domain.Neutral},
		{"transport", domain.Prediction{}, errors.New("connection refused"), domain.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := predictFunc(func(ctx context.Context, text string) (domain.Prediction, error) {
				return tc.pred, tc.err
			})
			got := app.NewModelClassifier(model, time.Second).Classify(context.Background(), "some text")
			if got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestModelClassifier_TruncatesTo512Chars(t *testing.T) {
	var seen string
	model := predictFunc(func(ctx context.Context, text string) (domain.Prediction, error) {
		seen = text
		return domain.Prediction{Label: "POSITIVE"}, nil
	})
	c := app.NewModelClassifier(model, time.Second)

	c.Classify(context.Background(), strings.Repeat("a", 600))
	if len(seen) != app.MaxModelChars {
		t.Fatalf("model saw %d chars, want %d", len(seen), app.MaxModelChars)
	}

	c.Classify(context.Background(), strings.Repeat("é", 600))
	if n := utf8.RuneCountInString(seen); n != app.MaxModelChars || !utf8.ValidString(seen) {
		t.Fatalf("model saw %d runes (valid=%v), want %d", n, utf8.ValidString(seen), app.MaxModelChars)
	}

	c.Classify(context.Background(), "short")
	if seen != "short" {
		t.Fatalf("short text changed to %q", seen)
	}
}

func TestModelClassifier_TimeoutFallsBackToNeutral(t *testing.T) {
	model := predictFunc(func(ctx context.Context, text string) (domain.Prediction, error) {
		<-ctx.Done()
		return domain.Prediction{}, ctx.Err()
	})
	c := app.NewModelClassifier(model, 20*time.Millisecond)

	start := time.Now()
	if got := c.Classify(context.Background(), "stuck"); got != domain.Neutral {
		t.Fatalf("Classify = %s, want NEUTRAL", got)
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("timeout not applied, took %s", d)
	}
}

func TestModelClassifier_CachesSuccessfulPredictions(t *testing.T) {
	var calls atomic.Int32
	model := predictFunc(func(ctx context.Context, text string) (domain.Prediction, error) {
		calls.Add(1)
		if text == "broken" {
			return domain.Prediction{}, domain.ErrMalformedPrediction
		}
		return domain.Prediction{Label: "NEGATIVE"}, nil
	})
	c := app.NewModelClassifier(model, time.Second).WithCache(&fakeCache{}, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got := c.Classify(ctx, "cold food"); got != domain.Negative {
			t.Fatalf("Classify = %s, want NEGATIVE", got)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("model calls = %d, want 1", got)
	}

	// degraded answers are not memoized
	c.Classify(ctx, "broken")
	c.Classify(ctx, "broken")
	if got := calls.Load(); got != 3 {
		t.Fatalf("model calls = %d, want 3", got)
	}
}

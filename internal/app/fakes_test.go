package app_test

import (
	"context"
	"sync"
	"sync/atomic"

	"review_insights/internal/domain"
)

// ---- fakes ----

// fixedClassifier returns a fixed label per cleaned text.
type fixedClassifier struct {
	labels map[string]domain.Sentiment
	def    domain.Sentiment
	calls  atomic.Int32
}

func (f *fixedClassifier) Classify(ctx context.Context, clean string) domain.Sentiment {
	f.calls.Add(1)
	if l, ok := f.labels[clean]; ok {
		return l
	}
	if f.def == "" {
		return domain.Neutral
	}
	return f.def
}

type predictFunc func(ctx context.Context, text string) (domain.Prediction, error)

func (f predictFunc) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	return f(ctx, text)
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Sentiment:
		*d = v.(domain.Sentiment)
	case *domain.Report:
		*d = v.(domain.Report)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type fakeRepo struct {
	saved map[string]domain.Report
	gets  int
	err   error
}

func (f *fakeRepo) SaveReport(ctx context.Context, r domain.Report) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]domain.Report{}
	}
	f.saved[r.ID] = r
	return nil
}

func (f *fakeRepo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	f.gets++
	r, ok := f.saved[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ListReports(ctx context.Context, limit int) (domain.ReportsPage, error) {
	return domain.ReportsPage{}, f.err
}

// letters spells i in base 26 (a, b, ... z, ba, bb, ...) so it survives Normalize.
func letters(i int) string {
	s := ""
	for {
		s = string(rune('a'+i%26)) + s
		i /= 26
		if i == 0 {
			return s
		}
	}
}

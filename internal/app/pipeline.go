package app

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"review_insights/internal/adapters/observability"
	"review_insights/internal/domain"
)

type AnalysisService struct {
	classifier SentimentClassifier
	workers    int
}

func NewAnalysisService(c SentimentClassifier, workers int) *AnalysisService {
	if workers <= 0 {
		workers = 1
	}
	return &AnalysisService{classifier: c, workers: workers}
}

// AnalyzeDataset checks the schema, coerces the text column and runs Analyze.
// A missing text column fails before any review is classified.
func (s *AnalysisService) AnalyzeDataset(ctx context.Context, ds domain.Dataset) (domain.AnalysisResult, error) {
	col, err := TextColumn(ds)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	texts := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		texts[i] = Stringify(row[col])
	}
	return s.Analyze(ctx, texts)
}

// Analyze runs normalize -> classify -> categorize -> aggregate -> score over one batch.
func (s *AnalysisService) Analyze(ctx context.Context, texts []string) (domain.AnalysisResult, error) {
	start := time.Now()

	reviews := make([]domain.Review, len(texts))
	for i, t := range texts {
		reviews[i] = domain.Review{RawText: t, CleanText: Normalize(t)}
	}

	// each goroutine owns reviews[i]; aggregation below does not depend on completion order
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range reviews {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reviews[i].Sentiment = s.classifier.Classify(gctx, reviews[i].CleanText)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AnalysisResult{}, err
	}

	var sentiments tally[domain.Sentiment]
	var issues tally[domain.IssueCategory]
	for i := range reviews {
		r := &reviews[i]
		sentiments.add(r.Sentiment)
		if r.Sentiment == domain.Negative {
			r.Issue = Categorize(r.RawText)
			issues.add(r.Issue)
		}
	}

	res := domain.AnalysisResult{
		Summary: domain.Summary{
			TotalReviews:       len(reviews),
			SentimentBreakdown: make([]domain.SentimentCount, 0, len(sentiments.order)),
		},
		IssueAnalysis: domain.IssueAnalysis{Issues: make([]domain.IssueRecord, 0, len(issues.order))},
	}
	for _, label := range sentiments.ranked() {
		n := sentiments.counts[label]
		res.Summary.SentimentBreakdown = append(res.Summary.SentimentBreakdown, domain.SentimentCount{
			Sentiment:  label,
			Count:      n,
			Percentage: percentage(n, len(reviews)),
		})
	}
	for _, issue := range issues.ranked() {
		n := issues.counts[issue]
		res.IssueAnalysis.Issues = append(res.IssueAnalysis.Issues, domain.IssueRecord{
			Issue:    issue,
			Count:    n,
			Severity: Severity(n),
		})
	}

	observability.ObserveAnalysis(len(reviews), time.Since(start))
	log.Info().
		Int("reviews", len(reviews)).
		Int("negative", sentiments.counts[domain.Negative]).
		Int("issues", len(res.IssueAnalysis.Issues)).
		Dur("duration", time.Since(start)).
		Msg("analysis completed")
	return res, nil
}

// percentage is 100*n/total rounded half-to-even at 2 decimals.
func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(n) / float64(total) * 100
	return math.RoundToEven(p*100) / 100
}

// tally counts keys and remembers first-seen order for tie-breaks.
type tally[K comparable] struct {
	order  []K
	counts map[K]int
}

func (t *tally[K]) add(k K) {
	if t.counts == nil {
		t.counts = make(map[K]int)
	}
	if _, seen := t.counts[k]; !seen {
		t.order = append(t.order, k)
	}
	t.counts[k]++
}

// ranked orders keys by count desc; the stable sort keeps first-seen order among ties.
func (t *tally[K]) ranked() []K {
	out := append([]K(nil), t.order...)
	sort.SliceStable(out, func(i, j int) bool { return t.counts[out[i]] > t.counts[out[j]] })
	return out
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"review_insights/internal/domain"
)

type ReportService struct {
	repo     domain.ReportRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewReportService(r domain.ReportRepository, c domain.Cache, ttl time.Duration) *ReportService {
	return &ReportService{repo: r, cache: c, cacheTTL: ttl}
}

// Save stores a finished analysis under a fresh id and warms the cache.
func (s *ReportService) Save(ctx context.Context, source string, res domain.AnalysisResult) (domain.Report, error) {
	rep := domain.Report{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Result:    res,
	}
	if err := s.repo.SaveReport(ctx, rep); err != nil {
		return domain.Report{}, fmt.Errorf("save report %s: %w", rep.ID, err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, reportKey(rep.ID), rep, int(s.cacheTTL.Seconds()))
	}
	return rep, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (domain.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Report{}, domain.ErrNotFound
	}
	key := reportKey(id)
	var rep domain.Report
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rep); ok {
			return rep, nil
		}
	}
	rep, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rep, int(s.cacheTTL.Seconds()))
	}
	return rep, nil
}

// List is never cached: new reports must show up immediately.
func (s *ReportService) List(ctx context.Context, limit int) (domain.ReportsPage, error) {
	page, err := s.repo.ListReports(ctx, limit)
	if err != nil {
		return domain.ReportsPage{}, err
	}
	if page.Items == nil {
		page.Items = []domain.Report{}
	}
	return page, nil
}

func reportKey(id string) string { return "report:" + id }

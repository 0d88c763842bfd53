package domain

import "context"

// Predictor is the external sentiment capability.
type Predictor interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

type ReportRepository interface {
	SaveReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (Report, error)
	ListReports(ctx context.Context, limit int) (ReportsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

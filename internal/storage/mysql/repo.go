package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"review_insights/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveReport(ctx context.Context, rep domain.Report) error {
	payload, err := json.Marshal(rep.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	negative := 0
	for _, s := range rep.Result.Summary.SentimentBreakdown {
		if s.Sentiment == domain.Negative {
			negative = s.Count
		}
	}
	_, err = r.db.ExecContext(ctx, insertReportSQL,
		rep.ID,
		rep.Source,
		rep.Result.Summary.TotalReviews,
		negative,
		string(payload),
		rep.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	rep, err := scanReport(r.db.QueryRowContext(ctx, getReportSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, domain.ErrNotFound
	}
	return rep, err
}

func (r *Repo) ListReports(ctx context.Context, limit int) (domain.ReportsPage, error) {
	rows, err := r.db.QueryContext(ctx, listReportsSQL, limit)
	if err != nil {
		return domain.ReportsPage{}, err
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return domain.ReportsPage{}, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return domain.ReportsPage{}, err
	}
	return domain.ReportsPage{Items: out}, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanReport(s scanner) (domain.Report, error) {
	var (
		rep       domain.Report
		source    sql.NullString
		payload   []byte
		createdAt time.Time
	)
	if err := s.Scan(&rep.ID, &source, &payload, &createdAt); err != nil {
		return domain.Report{}, err
	}
	if source.Valid {
		rep.Source = source.String
	}
	if err := json.Unmarshal(payload, &rep.Result); err != nil {
		return domain.Report{}, fmt.Errorf("report %s: decode result: %w", rep.ID, err)
	}
	rep.CreatedAt = createdAt.UTC()
	return rep, nil
}

package domain

import "time"

type SentimentCount struct {
	Sentiment  Sentiment `json:"sentiment"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
}

type IssueRecord struct {
	Issue    IssueCategory `json:"issue"`
	Count    int           `json:"count"`
	Severity SeverityTier  `json:"severity"`
}

type Summary struct {
	TotalReviews       int              `json:"total_reviews"`
	SentimentBreakdown []SentimentCount `json:"sentiment_breakdown"`
}

type IssueAnalysis struct {
	Issues []IssueRecord `json:"issues"`
}

// AnalysisResult is the dashboard payload for one batch.
type AnalysisResult struct {
	Summary       Summary       `json:"summary"`
	IssueAnalysis IssueAnalysis `json:"issue_analysis"`
}

// Report is a persisted AnalysisResult.
type Report struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	Result    AnalysisResult `json:"result"`
}

type ReportsPage struct {
	Items []Report `json:"items"`
}

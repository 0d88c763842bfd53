package app

import (
	"strings"

	"review_insights/internal/domain"
)

// Categorize buckets a negative review. It runs on the raw text (lower-cased),
// so words carrying punctuation still match.
func Categorize(raw string) domain.IssueCategory {
	low := strings.ToLower(raw)
	for _, rule := range domain.IssueRules {
		if containsAny(low, rule.Keywords) {
			return rule.Category
		}
	}
	return domain.FallbackIssue
}

// Severity maps an absolute issue count to a tier. It does not depend on batch size.
func Severity(count int) domain.SeverityTier {
	for _, t := range domain.SeverityThresholds {
		if count >= t.MinCount {
			return t.Tier
		}
	}
	return domain.SeverityLow
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

package app_test

import (
	"testing"

	"review_insights/internal/app"
	"review_insights/internal/domain"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		in   string
		want domain.IssueCategory
	}{
		{"Terrible wait, so slow", domain.IssueLongWait},
		{"staff was rude and slow", domain.IssueRudeStaff},
		{"staff ignored us while we were waiting", domain.IssueRudeStaff},
		{"Customer SERVICE and staff both awful", domain.IssuePoorService},
		{"worst experience ever", domain.IssuePoorService},
		{"Long delay at the counter", domain.IssueLongWait},
		{"Overpriced!!!", domain.IssueOverpriced},
		{"way too expensive", domain.IssueOverpriced},
		{"priceless disappointment", domain.IssueOverpriced}, // substring match
		{"COLD fries", domain.IssueProductQuality},
		{"burnt toast and dirty tables", domain.IssueProductQuality},
		{"cheapskate owner", domain.IssueOther},
		{"nan", domain.IssueOther},
		{"", domain.IssueOther},
	}
	for _, tc := range cases {
		if got := app.Categorize(tc.in); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCategorize_TotalAndDeterministic(t *testing.T) {
	valid := map[domain.IssueCategory]bool{}
	for _, c := range domain.Categories() {
		valid[c] = true
	}
	if len(valid) != 6 {
		t.Fatalf("taxonomy has %d categories, want 6", len(valid))
	}
	for _, in := range []string{"a", "manager", "WAIT", "🙂", "quality\nprice", "http://service"} {
		first := app.Categorize(in)
		if !valid[first] {
			t.Fatalf("Categorize(%q) = %q outside taxonomy", in, first)
		}
		if again := app.Categorize(in); again != first {
			t.Fatalf("Categorize(%q) not deterministic: %q vs %q", in, first, again)
		}
	}
}

func TestSeverity_Boundaries(t *testing.T) {
	cases := []struct {
		count int
		want  domain.SeverityTier
	}{
		{0, domain.SeverityLow},
		{1, domain.SeverityLow},
		{79, domain.SeverityLow},
		{80, domain.SeverityMedium},
		{199, domain.SeverityMedium},
		{200, domain.SeverityHigh},
		{399, domain.SeverityHigh},
		{400, domain.SeverityCritical},
		{10_000, domain.SeverityCritical},
	}
	for _, tc := range cases {
		if got := app.Severity(tc.count); got != tc.want {
			t.Errorf("Severity(%d) = %s, want %s", tc.count, got, tc.want)
		}
	}
}

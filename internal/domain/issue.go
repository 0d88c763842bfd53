package domain

type IssueCategory string

const (
	IssuePoorService    IssueCategory = "poor service"
	IssueRudeStaff      IssueCategory = "rude staff"
	IssueLongWait       IssueCategory = "long wait time"
	IssueOverpriced     IssueCategory = "overpriced"
	IssueProductQuality IssueCategory = "bad product quality"
	IssueOther          IssueCategory = "other issue"
)

type SeverityTier string

const (
	SeverityCritical SeverityTier = "Critical"
	SeverityHigh     SeverityTier = "High"
	SeverityMedium   SeverityTier = "Medium"
	SeverityLow      SeverityTier = "Low"
)

type IssueRule struct {
	Category IssueCategory
	Keywords []string
}

// IssueRules is evaluated in order; the first rule with a keyword contained in
// the lower-cased review wins. Matching is substring containment, not whole words.
var IssueRules = []IssueRule{
	{Category: IssuePoorService, Keywords: []string{"service", "support", "experience"}},
	{Category: IssueRudeStaff, Keywords: []string{"staff", "employee", "manager"}},
	{Category: IssueLongWait, Keywords: []string{"wait", "waiting", "delay"}},
	{Category: IssueOverpriced, Keywords: []string{"price", "expensive", "overpriced"}},
	{Category: IssueProductQuality, Keywords: []string{"quality", "dirty", "cold", "burnt"}},
}

// FallbackIssue is recorded when no rule matches.
const FallbackIssue = IssueOther

// Categories lists the full taxonomy, fallback last.
func Categories() []IssueCategory {
	out := make([]IssueCategory, 0, len(IssueRules)+1)
	for _, r := range IssueRules {
		out = append(out, r.Category)
	}
	return append(out, FallbackIssue)
}

type SeverityThreshold struct {
	MinCount int
	Tier     SeverityTier
}

// SeverityThresholds are absolute volumes, ordered high to low. Counts below the
// last entry are Low.
var SeverityThresholds = []SeverityThreshold{
	{MinCount: 400, Tier: SeverityCritical},
	{MinCount: 200, Tier: SeverityHigh},
	{MinCount: 80, Tier: SeverityMedium},
}

package domain

type Sentiment string

const (
	Positive Sentiment = "POSITIVE"
	Negative Sentiment = "NEGATIVE"
	Neutral  Sentiment = "NEUTRAL" // fallback when the model gives no usable answer
)

// ParseSentiment maps a model label onto the closed label set.
// Only POSITIVE and NEGATIVE are accepted from the model.
func ParseSentiment(label string) (Sentiment, bool) {
	switch Sentiment(label) {
	case Positive, Negative:
		return Sentiment(label), true
	}
	return "", false
}

// Review is one input row as it moves through the pipeline.
type Review struct {
	RawText   string
	CleanText string
	Sentiment Sentiment
	Issue     IssueCategory // set only for Negative reviews
}

// Dataset is the tabular input handed over by the ingestion layer (CSV, JSON).
// Missing cells are nil.
type Dataset struct {
	Columns []string
	Rows    []map[string]any
}

func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Prediction is the raw answer of the external sentiment model.
type Prediction struct {
	Label string
	Score float64
}

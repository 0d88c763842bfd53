package app_test

import (
	"testing"

	"review_insights/internal/app"
)

var normalizeCases = []struct {
	in, want string
}{
	{"Great service!", "great service"},
	{"Check http://x.com/a?b=1 now", "check now"},
	{"visit:https://x.com.", "visit"},
	{"wordhttp://foo bar", "word bar"},
	{"Price 100$ 😡 too HIGH", "price too high"},
	{"  multiple   \t spaces\n", "multiple spaces"},
	{"tab\u00a0nbsp", "tab nbsp"},
	{"Café au lait", "caf au lait"},
	{"1234 !!!", ""},
	{"", ""},
	{"nan", "nan"},
	{"http is down", "http is down"},
	{"the site says http", "the site says http"},
	{"HTTP\thttp://a.b x", "http x"},
	{"a\x1fb", "a b"},
	{"a\x1chttp://z b", "a b"},
}

func TestNormalize(t *testing.T) {
	for _, tc := range normalizeCases {
		if got := app.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"The STAFF were rude!!! Never again :(",
		"see https://example.com/review?id=3 for photos",
		"  Line one\nLine two\r\n\ttabbed ",
		"¡Muy caro! 20€ for a coffee",
	}
	for _, tc := range normalizeCases {
		inputs = append(inputs, tc.in)
	}
	for _, in := range inputs {
		once := app.Normalize(in)
		if twice := app.Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

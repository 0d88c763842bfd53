// review-analyze runs the review analysis over CSV files from the command line.
//
// Usage:
//
//	review-analyze reviews.csv                 # print the analysis as JSON
//	review-analyze --persist week*.csv         # also store each result as a report
//	review-analyze --parallel 4 a.csv b.csv    # analyze several files at once
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"review_insights/internal/adapters/observability"
	"review_insights/internal/shared"
)

func main() {
	shared.LoadDotEnv()
	cfg := shared.Load()

	// stdout carries results, logs go to stderr
	log.Logger = observability.NewLoggerTo(cfg.AppEnv, os.Stderr)

	os.Exit(run(cfg, os.Args[1:]))
}

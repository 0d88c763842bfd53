package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"review_insights/internal/adapters/csvin"
	"review_insights/internal/adapters/huggingface"
	redisad "review_insights/internal/adapters/redis"
	"review_insights/internal/app"
	"review_insights/internal/domain"
	"review_insights/internal/shared"
	mysqlrepo "review_insights/internal/storage/mysql"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitRuntime = 3
)

// fileResult is one line of output.
type fileResult struct {
	File     string                 `json:"file"`
	ReportID string                 `json:"report_id,omitempty"`
	Result   *domain.AnalysisResult `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

type options struct {
	parallel int
	persist  bool
	pretty   bool
}

func run(cfg shared.Config, args []string) int {
	code := exitOK
	opts := options{}

	cmd := &cobra.Command{
		Use:           "review-analyze [flags] file.csv...",
		Short:         "Analyze customer review CSV files",
		Long:          "Classifies review sentiment, buckets negative reviews into issue categories and prints one JSON result per file.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, files []string) error {
			analysis, reports, cleanup, err := wire(cmd.Context(), cfg, opts.persist)
			if err != nil {
				code = exitRuntime
				return err
			}
			defer cleanup()

			if failed := analyzeFiles(cmd.Context(), analysis, reports, files, opts, cmd.OutOrStdout()); failed > 0 {
				code = exitFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 2, "files analyzed at the same time")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "store each result as a report (requires MYSQL_DSN)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent model calls per file")

	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if code == exitOK {
			code = exitUsage
		}
	}
	return code
}

// wire builds the services from config. reports is nil unless persist is set.
func wire(ctx context.Context, cfg shared.Config, persist bool) (*app.AnalysisService, *app.ReportService, func(), error) {
	model, err := huggingface.New(cfg.HFBaseURL, cfg.HFModel, cfg.HFToken, cfg.HFRPS)
	if err != nil {
		return nil, nil, nil, err
	}
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
		}
	}
	classifier := app.NewModelClassifier(model, cfg.ClassifyTimeout)
	if cache != nil {
		classifier = classifier.WithCache(cache, cfg.PredictionTTL)
	}
	analysis := app.NewAnalysisService(classifier, cfg.Workers)

	if !persist {
		return analysis, nil, func() {}, nil
	}
	if cfg.MySQLDSN == "" {
		return nil, nil, nil, fmt.Errorf("--persist needs MYSQL_DSN")
	}
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("db ping: %w", err)
	}
	return analysis, app.NewReportService(mysqlrepo.New(db), cache, cfg.CacheTTL), func() { db.Close() }, nil
}

// analyzeFiles prints results in argument order and returns how many files failed.
func analyzeFiles(ctx context.Context, analysis *app.AnalysisService, reports *app.ReportService, files []string, opts options, out io.Writer) int {
	if opts.parallel <= 0 {
		opts.parallel = 1
	}
	sem := semaphore.NewWeighted(int64(opts.parallel))
	results := make([]fileResult, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		i, path := i, path
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = fileResult{File: path, Error: err.Error()}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = analyzeFile(ctx, analysis, reports, path)
		}()
	}
	wg.Wait()

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			log.Error().Err(err).Str("file", r.File).Msg("write result failed")
		}
	}
	return failed
}

func analyzeFile(ctx context.Context, analysis *app.AnalysisService, reports *app.ReportService, path string) fileResult {
	fr := fileResult{File: path}
	f, err := os.Open(path)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	defer f.Close()

	ds, err := csvin.Read(f)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	res, err := analysis.AnalyzeDataset(ctx, ds)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("analysis failed")
		fr.Error = err.Error()
		return fr
	}
	fr.Result = &res

	if reports != nil {
		rep, err := reports.Save(ctx, filepath.Base(path), res)
		if err != nil {
			fr.Error = err.Error()
			return fr
		}
		fr.ReportID = rep.ID
	}
	log.Info().Str("file", path).Int("reviews", res.Summary.TotalReviews).Msg("file analyzed")
	return fr
}

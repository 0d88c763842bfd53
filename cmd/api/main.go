package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "review_insights/internal/adapters/http_server"
	"review_insights/internal/adapters/huggingface"
	"review_insights/internal/adapters/observability"
	redisad "review_insights/internal/adapters/redis"
	"review_insights/internal/app"
	"review_insights/internal/domain"
	"review_insights/internal/shared"
	mysqlrepo "review_insights/internal/storage/mysql"
)

func main() {
	shared.LoadDotEnv()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	model, err := huggingface.New(cfg.HFBaseURL, cfg.HFModel, cfg.HFToken, cfg.HFRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize inference client")
	}

	// optional cache
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
		}
	}

	classifier := app.NewModelClassifier(model, cfg.ClassifyTimeout)
	if cache != nil {
		classifier = classifier.WithCache(cache, cfg.PredictionTTL)
	}
	handlers := &server.Handlers{
		A:         app.NewAnalysisService(classifier, cfg.Workers),
		MaxUpload: cfg.MaxUploadBytes,
	}

	// optional report store
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		if cfg.MigrationsDir != "" {
			n, err := mysqlrepo.Migrate(context.Background(), db, cfg.MigrationsDir)
			if err != nil {
				log.Fatal().Err(err).Msg("migrations failed")
			}
			log.Info().Int("files", n).Str("dir", cfg.MigrationsDir).Msg("migrations applied")
		}
		handlers.R = app.NewReportService(mysqlrepo.New(db), cache, cfg.CacheTTL)
	} else {
		log.Info().Msg("MYSQL_DSN empty, reports are not persisted")
	}

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("model", cfg.HFModel).Int("workers", cfg.Workers).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

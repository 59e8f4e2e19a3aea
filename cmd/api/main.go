package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/adapters/memory"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/adapters/postgres"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/app"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/api"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/classify"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/config"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/hierarchy"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/profiling"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/recommend"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/ports"
)

func main() {
	godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ruleStore, feedbackStore, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("store initialization failed: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	profiler := profiling.NewProfiler(profiling.Config{
		NumericThreshold: cfg.Analysis.NumericThreshold,
		DateThreshold:    cfg.Analysis.DateThreshold,
		Concurrency:      cfg.Analysis.ProfileConcurrency,
	})
	classifyCfg := classify.DefaultConfig()
	classifyCfg.NumericThreshold = cfg.Analysis.NumericThreshold
	classifyCfg.DateThreshold = cfg.Analysis.DateThreshold
	classifyCfg.SampleSize = cfg.Analysis.SampleSize
	classifier := classify.NewClassifier(classifyCfg)
	detector := hierarchy.NewDetector(hierarchy.DefaultConfig())
	engine := recommend.NewEngine(logger)
	learner := learning.NewLearner(feedbackStore, ruleStore, cfg.Learning.MinSupport, logger)

	scheduler, err := learning.NewScheduler(learner, cfg.Learning.MineSchedule, logger)
	if err != nil {
		logger.Error("scheduler initialization failed: %v", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	service := app.NewAnalysisService(profiler, classifier, detector, engine, learner, hierarchy.TreeOptions{
		MaxDepth:   cfg.Analysis.MaxTreeDepth,
		MaxBreadth: cfg.Analysis.MaxTreeBreadth,
	}, logger)

	server := api.NewServer(service, memory.NewDatasetRegistry(), scheduler, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error: %v", err)
	}
}

// buildStores selects postgres stores when DATABASE_URL is set, the
// in-memory stores otherwise.
func buildStores(ctx context.Context, cfg *config.Config, logger *internal.Logger) (ports.RuleStore, ports.FeedbackStore, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info("no DATABASE_URL set, using in-memory stores")
		return memory.NewRuleStore(), memory.NewFeedbackStore(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	logger.Info("connected to postgres")
	return postgres.NewRuleStore(db), postgres.NewFeedbackStore(db), func() { db.Close() }, nil
}

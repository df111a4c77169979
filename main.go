package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"docflow/internal/api"
	"docflow/internal/config"
	"docflow/internal/extract"
	"docflow/internal/logging"
	"docflow/internal/pipeline"
	"docflow/internal/render"
	"docflow/internal/storage"
	"docflow/internal/summarize"
	"docflow/internal/translate"
	"docflow/internal/worker"
)

var (
	cfgPath   string
	storeKind string
)

var rootCmd = &cobra.Command{
	Use:           "docflow",
	Short:         "Document processing service: extract, classify, summarize, translate and render",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the documents table for the configured relational store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		kind := cfg.BasicConfig.Store
		switch kind {
		case "sqlite3", "mysql", "postgres":
		default:
			logger.Info().Str("store", kind).Msg("store needs no migration")
			return nil
		}
		db, err := storage.Open(kind, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := storage.Migrate(cmd.Context(), db, kind); err != nil {
			return err
		}
		logger.Info().Str("store", kind).Msg("migration complete")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (env DOCFLOW_CONFIG, default config.json)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "record store: sqlite3, mysql, postgres, redis, badger, firestore (env DOCFLOW_STORE)")
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	path := cfgPath
	if path == "" {
		path = os.Getenv("DOCFLOW_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	store := storeKind
	if store == "" {
		store = os.Getenv("DOCFLOW_STORE")
	}
	if err := cfg.WithStore(store); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Log, os.Stdout), nil
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Info().Str("store", cfg.BasicConfig.Store).Msg("record store ready")

	extractor, err := extract.New(ctx)
	if err != nil {
		return err
	}
	summarizer, err := summarize.New()
	if err != nil {
		return err
	}
	translator, err := translate.New(ctx, cfg.Translation)
	if err != nil {
		return err
	}
	if closer, ok := translator.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		MaxWorkers: cfg.BasicConfig.MaxWorkers,
		QueueSize:  cfg.BasicConfig.QueueSize,
	}, logger)
	defer dispatcher.Stop()

	svc, err := pipeline.New(store, pipeline.Adapters{
		Extractor:  extractor,
		Summarizer: summarizer,
		Translator: translator,
		Renderer:   render.New(cfg.Render.Fonts, cfg.Render.FontSize),
	}, dispatcher, pipeline.Config{
		UploadDir:        cfg.BasicConfig.UploadDir,
		SummarySentences: cfg.Summary.Sentences,
	}, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(logger))
	api.NewHandler(svc, api.Config{
		MaxUploadBytes: cfg.BasicConfig.MaxUploadMB << 20,
		APIKey:         cfg.BasicConfig.APIKey,
	}, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.BasicConfig.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

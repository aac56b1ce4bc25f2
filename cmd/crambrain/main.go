package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/crambrain/internal/ai"
	"github.com/xxxsen/crambrain/internal/answer"
	"github.com/xxxsen/crambrain/internal/config"
	"github.com/xxxsen/crambrain/internal/db"
	"github.com/xxxsen/crambrain/internal/embed"
	"github.com/xxxsen/crambrain/internal/filestore"
	"github.com/xxxsen/crambrain/internal/handler"
	"github.com/xxxsen/crambrain/internal/index"
	"github.com/xxxsen/crambrain/internal/job"
	"github.com/xxxsen/crambrain/internal/middleware"
	"github.com/xxxsen/crambrain/internal/pdf"
	"github.com/xxxsen/crambrain/internal/quiz"
	"github.com/xxxsen/crambrain/internal/schedule"
	"github.com/xxxsen/crambrain/internal/search"
	"github.com/xxxsen/crambrain/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "crambrain",
		Short: "crambrain document QA server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run crambrain server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sqlx.DB) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
	)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedArgs := cfg.AI.EmbedData
	if embedArgs == nil {
		embedArgs = cfg.AI.Data
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, embedArgs)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}

	embedder := embed.WrapLRUCache(
		ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel),
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTL)*time.Minute,
	)
	embedService := embed.NewService(embedder, cfg.AI.EmbedWorkers)

	// The server refuses to come up without a working embedding
	// backend; every query and ingestion needs it.
	initCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.AI.Timeout)*time.Second)
	defer cancel()
	if err := embedService.Init(initCtx); err != nil {
		rootLogger.Fatal("embedding provider init failed", zap.Error(err))
	}
	if cfg.AI.EmbedDim != 0 && embedService.Dim() != cfg.AI.EmbedDim {
		rootLogger.Fatal("embedding dimension mismatch",
			zap.Int("configured", cfg.AI.EmbedDim),
			zap.Int("actual", embedService.Dim()),
		)
	}

	chunkStore := index.NewStore(conn)
	docRepo := index.NewDocumentRepo(conn)
	chunker := pdf.NewChunker(cfg.Retrieval.ChunkMaxChars)

	searcher := search.NewSearcher(embedService, chunkStore, cfg.Retrieval.LexicalPoolLimit)
	generator := answer.NewGenerator(
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		time.Duration(cfg.AI.Timeout)*time.Second,
	)

	ingestService := service.NewIngestService(store, chunker, embedService, chunkStore, docRepo)
	queryService := service.NewQueryService(searcher, generator, cfg.Retrieval.TopK, cfg.Retrieval.MaxTopK)
	quizService := service.NewQuizService(searcher, quiz.NewGenerator())

	deps := handler.RouterDeps{
		Query:     handler.NewQueryHandler(queryService, quizService),
		Ingest:    handler.NewIngestHandler(ingestService),
		Documents: handler.NewDocumentHandler(docRepo),
		Files:     handler.NewFileHandler(store),
		Health:    handler.NewHealthHandler(conn),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllow),
			middleware.RateLimit(time.Duration(cfg.RateWindow)*time.Second),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	rootLogger.Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingBackfillJob(ingestService, cfg.Jobs.BackfillBatch), cfg.Jobs.BackfillCron); err != nil {
		return fmt.Errorf("schedule backfill job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	return nil
}

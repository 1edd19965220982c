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
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/itsJino/slainte-llm/internal/ai"
	"github.com/itsJino/slainte-llm/internal/chroma"
	"github.com/itsJino/slainte-llm/internal/config"
	"github.com/itsJino/slainte-llm/internal/embedcache"
	"github.com/itsJino/slainte-llm/internal/handler"
	"github.com/itsJino/slainte-llm/internal/job"
	"github.com/itsJino/slainte-llm/internal/middleware"
	"github.com/itsJino/slainte-llm/internal/schedule"
	"github.com/itsJino/slainte-llm/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "slainte",
		Short: "slainte health-information chat gateway",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json (optional, defaults target loopback services)")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("startup error", zap.Error(err))
		os.Exit(1)
	}
}

func runServer(cfg *config.Config) error {
	log := logutil.GetLogger(context.Background())
	log.Info("starting gateway",
		zap.Int("port", cfg.Port),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("embedding_url", cfg.Embedding.URL),
		zap.String("chroma_url", cfg.Chroma.URL),
		zap.String("llm_model", cfg.LLM.Model),
	)

	embedder := embedcache.WrapLRUCache(
		ai.NewEmbedder(ai.EmbedderConfig{
			URL:    cfg.Embedding.URL,
			Model:  cfg.Embedding.Model,
			Direct: cfg.Embedding.Direct,
		}),
		cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTLMinutes)*time.Minute,
	)
	store := chroma.New(chroma.Config{
		URL:          cfg.Chroma.URL,
		CollectionID: cfg.Chroma.CollectionID,
		Dimension:    cfg.Chroma.Dimension,
		CacheSize:    cfg.Chroma.CacheSize,
		CacheTTL:     time.Duration(cfg.Chroma.CacheTTLMinutes) * time.Minute,
	})
	generator := ai.NewGenerator(ai.GeneratorConfig{
		URL:     cfg.LLM.URL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	recorder := service.NewDiagnosticsRecorder()
	kb := service.NewKnowledgeBaseService(embedder, store, recorder, cfg.Chroma.DefaultTopK, cfg.Chroma.MaxTopK)
	chat := service.NewChatService(kb, generator)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.CORS([]string{cfg.FrontendURL}),
		gzip.Gzip(gzip.DefaultCompression),
	)
	api := engine.Group("/api")
	if cfg.RateLimitSeconds > 0 {
		api.Use(middleware.RateLimit(time.Duration(cfg.RateLimitSeconds) * time.Second))
	}
	handler.RegisterRoutes(api, handler.RouterDeps{
		Chat:        handler.NewChatHandler(chat),
		Search:      handler.NewSearchHandler(kb),
		Diagnostics: handler.NewDiagnosticHandler(embedder, store),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Warmup.CronSpec != "" {
		queries := make([]string, 0)
		for _, label := range service.TopicLabels() {
			queries = append(queries, label+" information HSE")
		}
		if err := scheduler.AddJob(job.NewCacheWarmupJob(embedder, queries), cfg.Warmup.CronSpec); err != nil {
			return fmt.Errorf("schedule warmup job: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: engine,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

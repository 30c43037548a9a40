package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/history"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm/gemini"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm/genaisdk"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm/openai"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/queue"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/db"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object"
	localstore "github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object/local"
	s3store "github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object/s3"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/uploads"
)

// App holds shared dependencies for the API, worker and CLI.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Queue           queue.Client
	LLM             llm.Client
	History         history.Store
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	HistoryHandler  *history.Handler
	UploadsHandler  *uploads.Handler

	closers []func() error
}

// Options tweaks Build for the calling process.
type Options struct {
	// DBOptions defaults to db.DefaultServerOptions.
	DBOptions *db.Options
	// SkipRouter leaves App.Router nil for processes that do not serve HTTP.
	SkipRouter bool
	// SharedDB reuses the process-wide pool across warm Lambda invocations.
	SharedDB bool
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	app := &App{Config: cfg}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	llmClient, closeLLM, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.LLM = llmClient
	if closeLLM != nil {
		app.closers = append(app.closers, closeLLM)
	}

	if err := app.buildHistory(ctx, opts); err != nil {
		app.Close()
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Queue = queueClient

	app.AnalysesService = &analyses.Service{
		LLM:      app.LLM,
		History:  app.History,
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, app.Store, app.Queue)
	app.HistoryHandler = history.NewHandler(app.History)
	if presigner, ok := app.Store.(uploads.Presigner); ok && app.Queue != nil {
		app.UploadsHandler = uploads.NewHandler(presigner, app.Queue)
	}

	if !opts.SkipRouter {
		deps := server.RouterDeps{
			Config:          cfg,
			AnalysisHandler: app.AnalysisHandler,
			HistoryHandler:  app.HistoryHandler,
		}
		if app.UploadsHandler != nil {
			deps.UploadsHandler = app.UploadsHandler
		}
		app.Router = server.NewRouter(deps)
	}
	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM returns the configured provider. A missing key falls back to the
// placeholder client so the server still starts.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, func() error, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			log.Printf("bootstrap: OPENAI_API_KEY empty; analysis requests will fail")
			return llm.PlaceholderClient{}, nil, nil
		}
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, timeout)
		return c, nil, err
	case "gemini-sdk":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analysis requests will fail")
			return llm.PlaceholderClient{}, nil, nil
		}
		c, err := genaisdk.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analysis requests will fail")
			return llm.PlaceholderClient{}, nil, nil
		}
		var opts []gemini.Option
		if cfg.GeminiBaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
		}
		c, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel, timeout, opts...)
		return c, nil, err
	}
}

func (a *App) buildHistory(ctx context.Context, opts Options) error {
	cfg := a.Config
	switch cfg.HistoryBackend {
	case "memory":
		a.History = history.NewListStore(history.NewMemoryBackend())
	case "redis":
		backend, closeFn, err := history.NewRedisBackend(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closeFn)
		a.History = history.NewListStore(backend)
	case "object":
		a.History = history.NewListStore(history.NewObjectBackend(a.Store))
	case "postgres":
		dbOpts := db.DefaultServerOptions()
		if opts.DBOptions != nil {
			dbOpts = *opts.DBOptions
		}
		var (
			sqlDB *sql.DB
			err   error
		)
		if opts.SharedDB {
			sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(dbOpts))
		} else {
			sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(dbOpts))
		}
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: database connect failed; using file history: %v", err)
				a.History = history.NewListStore(history.NewFileBackend(cfg.HistoryDir))
				return nil
			}
			return err
		}
		if !opts.SharedDB {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.DB = sqlDB
		a.History = history.NewPGStore(sqlDB)
	default:
		a.History = history.NewListStore(history.NewFileBackend(cfg.HistoryDir))
	}
	return nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if cfg.QueueURL == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	googleauth "cv-backend/internal/auth"
	"cv-backend/internal/cvs"
	"cv-backend/internal/generation"
	"cv-backend/internal/llm"
	"cv-backend/internal/llm/gemini"
	"cv-backend/internal/llm/openai"
	"cv-backend/internal/resumes"
	"cv-backend/internal/shared/auth"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/server"
	"cv-backend/internal/shared/storage/db"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Redis      *goredis.Client
	Store      *resumes.Store
	Gateway    *generation.Gateway
	Service    *cvs.Service
	Users      *users.Service
	Signer     *auth.Signer
	GoogleAuth *googleauth.GoogleService

	cancel context.CancelFunc
}

// Build wires every dependency. The context bounds background listeners.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	app := &App{Config: cfg, cancel: cancel}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.DB = sqlDB

	var repo resumes.Repo = resumes.NewMemoryRepo()
	var userRepo users.Repo = users.NewMemoryRepo()
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
	}
	app.Users = users.NewService(userRepo)

	hub := resumes.NewHub()
	var opts []resumes.StoreOption
	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.Redis = rdb
		bus := resumes.NewRedisBus(rdb, cfg.RedisChannel)
		if err := bus.Start(ctx, hub.Dispatch); err != nil {
			app.Close()
			return nil, err
		}
		opts = append(opts, resumes.WithNotifier(bus))
	}
	app.Store = resumes.NewStore(repo, hub, opts...)

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Gateway = generation.NewGateway(backend, cfg.LLMTimeout)
	app.Service = &cvs.Service{Store: app.Store, Gateway: app.Gateway}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.IsProduction())
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Signer = signer
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		signer,
		app.Users,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Signer:     signer,
		GoogleAuth: app.GoogleAuth,
		CvHandler:  cvs.NewHandler(app.Service),
		Users:      users.NewHandler(app.Users),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"store":        storeKind(sqlDB),
		"change_bus":   rdb != nil,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
	})
	return app, nil
}

// Close releases connections and stops background listeners.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.local_changes", map[string]any{"reason": "redis unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func buildBackend(ctx context.Context, cfg config.Config) (llm.Backend, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderBackend{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case config.ProviderGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" && isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "GEMINI_API_KEY empty"})
			return llm.PlaceholderBackend{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderBackend{}, nil
	}
}

func storeKind(sqlDB *sql.DB) string {
	if sqlDB != nil {
		return "postgres"
	}
	return "memory"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

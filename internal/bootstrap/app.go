package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/account"
	"cvmatch-backend/internal/analyses"
	"cvmatch-backend/internal/analyses/advisory"
	googleauth "cvmatch-backend/internal/auth"
	"cvmatch-backend/internal/documents"
	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/llm/gemini"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server"
	"cvmatch-backend/internal/shared/storage/db"
	"cvmatch-backend/internal/shared/storage/object"
	localstore "cvmatch-backend/internal/shared/storage/object/local"
	s3store "cvmatch-backend/internal/shared/storage/object/s3"
	"cvmatch-backend/internal/shared/telemetry"
	"cvmatch-backend/internal/usage"
	"cvmatch-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo documents.DocumentsRepo
	AnalysesRepo  analyses.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	UsageService     *usage.Service
	AnalysesService  *analyses.Service
	AccountService   *account.Service
	UsersService     *users.Service

	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	UsageHandler     *usage.Handler
	AccountHandler   *account.Handler
	AdminHandler     *account.AdminHandler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		DocumentHandler: app.DocumentsHandler,
		UsageHandler:    app.UsageHandler,
		UserHandler:     app.UsersHandler,
		AccountHandler:  app.AccountHandler,
		AdminHandler:    app.AdminHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("CV_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	var llmClient llm.Client = llm.Disabled{}
	if app.Config.AdvisoryEnabled() {
		llmClient = gemini.NewClient(
			app.Config.GeminiAPIKey,
			app.Config.GeminiModel,
			app.Config.GeminiTimeout,
			gemini.NewSelectionState(),
		)
	}
	engine := analyses.NewEngine(advisory.NewService(llmClient))

	analysisSvc := &analyses.Service{
		Repo:        analysisRepo,
		Usage:       usageSvc,
		Engine:      engine,
		AnalyzeCost: app.Config.AnalyzeCost,
		RewriteCost: app.Config.RewriteCost,
	}

	userSvc := users.NewService(userRepo)
	accountSvc := account.NewService(docRepo, analysisRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.UsageService = usageSvc
	app.AnalysesService = analysisSvc
	app.AccountService = accountSvc
	app.UsersService = userSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc, docSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.AdminHandler = account.NewAdminHandler(accountSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
}

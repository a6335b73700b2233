package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ivopashov/classdocs/internal/api"
	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/config"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/gateway"
	redisclient "github.com/ivopashov/classdocs/internal/redis"
	"github.com/ivopashov/classdocs/internal/service"
	"github.com/ivopashov/classdocs/internal/snowflake"
	"github.com/ivopashov/classdocs/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("postgres", err)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		fatal("redis", err)
	}
	defer rdb.Close()

	store, err := storage.NewMinIOClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket)
	if err != nil {
		fatal("minio", err)
	}

	sf, err := snowflake.NewGenerator(1)
	if err != nil {
		fatal("snowflake", err)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	groups := database.NewGroupRepository(pool)
	roots := database.NewDocumentRootRepository(pool)
	perms := database.NewPermissionRepository(pool)
	documents := database.NewDocumentRepository(pool)
	attachments := database.NewAttachmentRepository(pool)
	signupTokens := database.NewSignupTokenRepository(pool)
	templates := database.NewTemplateRepository(pool)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, groups, rdb)

	// --- Services ---

	checker := service.NewAccessChecker(roots, perms, groups)
	authSvc := service.NewAuthService(users, signupTokens, tokenSvc, rdb, sf)
	userSvc := service.NewUserService(users, gwManager)
	groupSvc := service.NewGroupService(groups, users, sf, gwManager, checker)
	rootSvc := service.NewDocumentRootService(roots, perms, users, groups, sf, gwManager, checker)
	documentSvc := service.NewDocumentService(documents, templates, sf, gwManager, checker)
	templateSvc := service.NewTemplateService(templates, sf)
	uploadSvc := service.NewUploadService(attachments, documents, sf, store, checker)

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc),
		Users:        api.NewUserHandler(userSvc),
		Groups:       api.NewGroupHandler(groupSvc),
		Roots:        api.NewDocumentRootHandler(rootSvc),
		Documents:    api.NewDocumentHandler(documentSvc),
		Templates:    api.NewTemplateHandler(templateSvc),
		Uploads:      api.NewUploadHandler(uploadSvc),
		Gateway:      gwManager,
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("classdocs starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			fatal("server", err)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		fatal("shutdown", err)
	}
}

func fatal(what string, err error) {
	slog.Error(what, "error", err)
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefront/backend/internal/assign"
	"github.com/storefront/backend/internal/cache"
	"github.com/storefront/backend/internal/config"
	"github.com/storefront/backend/internal/handler"
	"github.com/storefront/backend/internal/logging"
	"github.com/storefront/backend/internal/notify"
	"github.com/storefront/backend/internal/realtime"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/internal/storage"
	"github.com/storefront/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("load config failed", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logging.Fatal("failed to connect to redis", "error", err)
	}
	defer rdb.Close()

	policy, err := assign.ParsePolicy(cfg.PMAssignmentPolicy)
	if err != nil {
		logging.Fatal("invalid PM assignment policy", "error", err)
	}

	notifier, err := notify.NewAWS(ctx, notify.AWSOptions{
		Region:      cfg.AWS.Region,
		SESEnabled:  cfg.AWS.SESEnabled,
		FromEmail:   cfg.AWS.SESFromEmail,
		SNSEnabled:  cfg.AWS.SNSEnabled,
		SNSSenderID: cfg.AWS.SNSSenderID,
	})
	if err != nil {
		logging.Fatal("failed to set up notifications", "error", err)
	}

	userRepo := repository.NewPgUserRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)
	pmRepo := repository.NewPgProjectManagerRepository(pool)
	vendorRepo := repository.NewPgVendorRepository(pool)
	costRepo := repository.NewPgCostStandardRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	eventRepo := repository.NewPgStageEventRepository(pool)

	costCache := cache.NewCostStandards(rdb, costRepo, cfg.EstimateCacheTTL)
	broker := realtime.NewRedisBroker(rdb)
	files := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)

	estimateService := service.NewEstimateService(costCache)
	messageService := service.NewMessageService(messageRepo, projectRepo, broker, files, cfg.MessageBacklog)
	projectService := service.NewProjectService(service.ProjectDeps{
		Projects:  projectRepo,
		PMs:       pmRepo,
		Users:     userRepo,
		Events:    eventRepo,
		Estimates: estimateService,
		Policy:    policy,
		Messages:  messageService,
		Notifier:  notifier,
	})
	checklistService := service.NewChecklistService(projectRepo, vendorRepo)
	pmService := service.NewPMService(pmRepo, userRepo)
	vendorService := service.NewVendorService(vendorRepo)
	costStandardService := service.NewCostStandardService(costRepo, costCache)
	adminUserService := service.NewAdminUserService(userRepo)

	h := handler.New(pool, handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }), cfg.FrontendURL)
	onboardingHandler := handler.NewOnboardingHandler(estimateService)
	projectHandler := handler.NewProjectHandler(projectService)
	checklistHandler := handler.NewChecklistHandler(checklistService)
	messageHandler := handler.NewMessageHandler(messageService)
	adminHandler := handler.NewAdminHandler(pmService, vendorService, costStandardService, adminUserService)
	meHandler := handler.NewMeHandler(userRepo)

	sessionSecret := auth.SessionSecretBytes(cfg.SessionSecret)
	roleLookup := func(ctx context.Context, userID string) (string, bool, error) {
		u, err := userRepo.FindByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", false, auth.ErrUnknownUser
		}
		if err != nil {
			return "", false, err
		}
		return string(u.Role), u.IsSuspended(), nil
	}
	withRole := auth.RoleMiddleware(roleLookup)

	// 認証必要エンドポイント
	wrapAuth := func(next http.HandlerFunc) http.Handler {
		if cfg.AuthRequired {
			return auth.RequireAuth(sessionSecret)(withRole(next))
		}
		return auth.DevAuth(withRole(next))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	uploads := cfg.UploadURLPrefix + "/"
	mux.Handle("GET "+uploads, http.StripPrefix(uploads, http.FileServer(http.Dir(files.BaseDir()))))

	// ステージ情報・オンボーディング（認証不要）
	mux.HandleFunc("GET /api/stages", onboardingHandler.Stages)
	mux.HandleFunc("GET /api/checklist-template", onboardingHandler.ChecklistTemplate)
	mux.HandleFunc("POST /api/onboarding/advance", onboardingHandler.Advance)
	mux.HandleFunc("POST /api/onboarding/estimate", onboardingHandler.Estimate)

	mux.Handle("GET /api/me", wrapAuth(meHandler.Me))
	mux.Handle("GET /api/me/projects", wrapAuth(projectHandler.MyProjects))

	// プロジェクト API
	mux.Handle("POST /api/projects", wrapAuth(projectHandler.Create))
	mux.Handle("GET /api/projects/{id}", wrapAuth(projectHandler.Get))
	mux.Handle("POST /api/projects/{id}/cancel", wrapAuth(projectHandler.Cancel))
	mux.Handle("GET /api/projects/{id}/events", wrapAuth(projectHandler.Events))
	mux.Handle("PATCH /api/projects/{id}/checklist/{itemId}", wrapAuth(checklistHandler.Update))

	// チャット API
	mux.Handle("GET /api/projects/{id}/messages", wrapAuth(messageHandler.List))
	mux.Handle("POST /api/projects/{id}/messages", wrapAuth(messageHandler.Send))
	mux.Handle("GET /api/projects/{id}/messages/stream", wrapAuth(messageHandler.Stream))

	// PM ポータル（担当 PM・管理者のみ。権限はサービス層で確認）
	mux.Handle("POST /api/pm/projects/{id}/advance", wrapAuth(projectHandler.Advance))
	mux.Handle("PUT /api/pm/projects/{id}/stage", wrapAuth(projectHandler.SetStage))
	mux.Handle("POST /api/pm/projects/{id}/checklist", wrapAuth(checklistHandler.Add))
	mux.Handle("DELETE /api/pm/projects/{id}/checklist/{itemId}", wrapAuth(checklistHandler.Delete))
	mux.Handle("GET /api/vendors", wrapAuth(adminHandler.ListVendors))

	// Admin routes (services enforce the admin role)
	mux.Handle("GET /api/admin/projects", wrapAuth(projectHandler.AdminList))
	mux.Handle("GET /api/admin/pms", wrapAuth(adminHandler.ListPMs))
	mux.Handle("POST /api/admin/pms", wrapAuth(adminHandler.CreatePM))
	mux.Handle("PATCH /api/admin/pms/{id}", wrapAuth(adminHandler.UpdatePM))
	mux.Handle("POST /api/admin/vendors", wrapAuth(adminHandler.CreateVendor))
	mux.Handle("PUT /api/admin/vendors/{id}", wrapAuth(adminHandler.UpdateVendor))
	mux.Handle("GET /api/admin/cost-standards", wrapAuth(adminHandler.ListCostStandards))
	mux.Handle("POST /api/admin/cost-standards", wrapAuth(adminHandler.CreateCostStandard))
	mux.Handle("GET /api/admin/cost-standards/export", wrapAuth(adminHandler.ExportCostStandards))
	mux.Handle("POST /api/admin/cost-standards/import", wrapAuth(adminHandler.ImportCostStandards))
	mux.Handle("PUT /api/admin/cost-standards/{id}", wrapAuth(adminHandler.UpdateCostStandard))
	mux.Handle("DELETE /api/admin/cost-standards/{id}", wrapAuth(adminHandler.DeleteCostStandard))
	mux.Handle("GET /api/admin/users", wrapAuth(adminHandler.ListUsers))
	mux.Handle("PATCH /api/admin/users/{id}/suspend", wrapAuth(adminHandler.SuspendUser))

	rl := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	defer rl.Stop()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler.RequestLogger(handler.SecurityHeaders(rl.Middleware(h.CORS(mux)))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "auth_required", cfg.AuthRequired, "pm_policy", cfg.PMAssignmentPolicy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

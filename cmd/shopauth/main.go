package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopcore/shop-auth/pkg/config"
	"github.com/shopcore/shop-auth/pkg/database"
	"github.com/shopcore/shop-auth/pkg/iam"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/metrics"
	"github.com/shopcore/shop-auth/pkg/ratelimit"
	"github.com/shopcore/shop-auth/pkg/role"
	"github.com/shopcore/shop-auth/pkg/router"
	"github.com/shopcore/shop-auth/pkg/signup"
	"github.com/shopcore/shop-auth/pkg/tokengenerator"
)

type Config struct {
	AppConfig       config.AppConfig
	EnvConfig       config.EnvConfig
	DatabaseConfig  config.DatabaseConfig
	JwtConfig       config.JwtConfig
	PolicyConfig    config.PolicyConfig
	RateLimitConfig config.RateLimitConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	ctx := context.Background()

	if err := database.RunMigrations(cfg.DatabaseConfig.ToMigrateURL()); err != nil {
		slog.Error("Failed running migrations", "err", err)
		os.Exit(-1)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseConfig.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DatabaseConfig.Database, "host", cfg.DatabaseConfig.Host, "port", cfg.DatabaseConfig.Port, "user", cfg.DatabaseConfig.User)
		os.Exit(-1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	jwtService := tokengenerator.NewJwtService(cfg.JwtConfig.Secret,
		tokengenerator.WithAccessTokenExpiry(time.Duration(cfg.JwtConfig.AccessTokenMinutes)*time.Minute),
	)
	cookieSetter := tokengenerator.NewCookieSetter(cfg.JwtConfig.CookieHttpOnly, cfg.JwtConfig.CookieSecure)

	roleRepo := role.NewPostgresRoleRepository(pool)
	roleService := role.NewRoleService(roleRepo)

	loginRepo := login.NewPostgresLoginRepository(pool)
	identityService := login.NewIdentityService(loginRepo, jwtService)

	signupRepo := signup.NewPostgresSignupRepository(pool)
	signupService := signup.NewSignupService(identityService, signupRepo,
		signup.WithAdminEmail(cfg.PolicyConfig.AdminEmail),
		signup.WithProduction(cfg.EnvConfig.IsProduction()),
		signup.WithRecorder(recorder),
	)

	userRepo := iam.NewPostgresUserRepository(pool)
	userService := iam.NewUserService(userRepo, roleService)

	if err := seedRoles(ctx, roleService); err != nil {
		slog.Error("Failed seeding roles", "err", err)
		os.Exit(-1)
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil)
	limiter := ratelimit.NewMiddleware(cfg.RateLimitConfig.Capacity, cfg.RateLimitConfig.RefillRate)

	r := router.New(router.Config{
		AuthHandle:     signup.NewHandle(signupService, cookieSetter),
		UserHandle:     iam.NewHandle(userService),
		RoleHandle:     role.NewHandle(roleService),
		JwtAuth:        tokenAuth,
		RateLimit:      limiter,
		Recorder:       recorder,
		MetricsHandler: metrics.Handler(registry),
	})

	server := &http.Server{
		Addr:    cfg.AppConfig.Addr(),
		Handler: r,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting server", "addr", server.Addr, "env", cfg.EnvConfig.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-shutdownCtx.Done()
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Failed shutting down server", "err", err)
	}
}

// seedRoles ensures the canonical roles exist at startup. ResolveRole is
// idempotent, so restarts and concurrently starting replicas are safe.
func seedRoles(ctx context.Context, roleService *role.RoleService) error {
	for _, name := range []string{role.AdminRoleName, role.ProductManagerRoleName, role.DefaultRoleName} {
		if _, err := roleService.ResolveRole(ctx, name, role.Description(name)); err != nil {
			return err
		}
	}
	return nil
}

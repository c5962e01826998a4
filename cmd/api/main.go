package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chronobus-api/internal/config"
	"chronobus-api/internal/db"
	"chronobus-api/internal/email"
	apihttp "chronobus-api/internal/http"
	"chronobus-api/internal/oauth"
	"chronobus-api/internal/repository"
	"chronobus-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.MigrationsEnabled {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	var (
		limiter     service.RecoveryLimiter
		revocations service.RevocationStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			limiter = service.NewRedisRecoveryLimiter(redisClient, cfg.RecoveryWindow, cfg.RecoveryMax)
			revocations = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewMemoryRecoveryLimiter(cfg.RecoveryWindow, cfg.RecoveryMax)
	}

	if cfg.GoogleClientID == "" {
		logger.Warn("google client id not configured, google login will fail")
	}

	tokens := service.NewJWTServiceWithStore(cfg.JWTSecret, cfg.SessionTTL, cfg.ConfirmTTL, revocations)
	accounts := service.NewAccountService(
		logger,
		repository.NewPgUserRepository(pool),
		service.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		newMailer(cfg, logger),
		oauth.NewGoogleVerifier(cfg.GoogleClientID, cfg.GoogleCertsURL, &http.Client{Timeout: 10 * time.Second}),
		limiter,
		cfg.ConfirmURL,
	)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterOptions{AllowedOrigin: cfg.AllowedOrigin, RateLimitRPM: cfg.RateLimitRPM},
		apihttp.NewUserHandler(logger, accounts),
		apihttp.NewSessionHandler(logger, accounts),
		apihttp.NewCalendarHandler(logger),
		apihttp.NewHealthHandler(logger, pool),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
	return serve(ctx, server)
}

// newMailer prefiere Resend, luego SMTP; sin ninguno el envio queda deshabilitado.
func newMailer(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.ResendAPIKey != "" {
		sender, err := email.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
		if err == nil {
			return sender
		}
		logger.Warn("resend sender init failed", zap.Error(err))
	}
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err == nil {
			return sender
		}
		logger.Warn("smtp sender init failed", zap.Error(err))
	}
	logger.Warn("no email provider configured, registration will fail")
	return email.NewDisabledSender("email sender not configured")
}

func serve(ctx context.Context, server *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

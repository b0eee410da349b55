package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/marketplace-orders/internal/notification/application"
	notifyhttp "github.com/dmehra2102/marketplace-orders/internal/notification/infrastructure/http"
	"github.com/dmehra2102/marketplace-orders/internal/notification/infrastructure/smtp"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/httpx"
	"github.com/dmehra2102/marketplace-orders/pkg/logging"
	"github.com/dmehra2102/marketplace-orders/pkg/shutdown"
	"github.com/dmehra2102/marketplace-orders/pkg/tracing"
)

const service = "notification-service"

func main() {
	log := logging.New(service)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Configuration
	httpAddr := env("HTTP_ADDR", ":8083")
	smtpPort, err := strconv.Atoi(env("SMTP_PORT", "1025"))
	if err != nil {
		log.Error("invalid SMTP_PORT", "err", err)
		os.Exit(1)
	}
	smtpCfg := smtp.Config{
		Host:     env("SMTP_HOST", "localhost"),
		Port:     smtpPort,
		Username: env("SMTP_USER", ""),
		Password: env("SMTP_PASS", ""),
		From:     env("MAIL_FROM", "noreply@marketplace.local"),
	}
	jwtSecret := []byte(env("JWT_SECRET", "dev-secret"))
	origins := envList("CORS_ORIGIN")

	tp, err := tracing.Init(ctx, service, env("OTEL_ENDPOINT", ""), log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	mailer, err := smtp.NewMailer(log, smtpCfg)
	if err != nil {
		log.Error("smtp setup failed", "err", err)
		os.Exit(1)
	}
	svc := application.NewService(log, mailer)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, httpx.RequestLogger(log), middleware.Recoverer, httpx.CORS(origins), auth.Middleware(jwtSecret, log))
	r.Get("/", httpx.Health(service))
	r.Mount("/", notifyhttp.NewHandler(log, svc).Routes())

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", httpAddr, "smtp_host", smtpCfg.Host, "smtp_port", smtpCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown.Drain(log, 10*time.Second,
			shutdown.Hook{Name: "http", Stop: srv.Shutdown},
			shutdown.Hook{Name: "tracing", Stop: tp.Shutdown},
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("notification-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("notification-service shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

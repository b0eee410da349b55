package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	chatapp "github.com/dmehra2102/marketplace-orders/internal/chat/application"
	chatws "github.com/dmehra2102/marketplace-orders/internal/chat/infrastructure/ws"
	"github.com/dmehra2102/marketplace-orders/internal/order/application"
	"github.com/dmehra2102/marketplace-orders/internal/order/infrastructure/catalog"
	orderhttp "github.com/dmehra2102/marketplace-orders/internal/order/infrastructure/http"
	ordermemory "github.com/dmehra2102/marketplace-orders/internal/order/infrastructure/memory"
	ordermongo "github.com/dmehra2102/marketplace-orders/internal/order/infrastructure/mongo"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/dmehra2102/marketplace-orders/pkg/collab"
	"github.com/dmehra2102/marketplace-orders/pkg/httpx"
	"github.com/dmehra2102/marketplace-orders/pkg/logging"
	"github.com/dmehra2102/marketplace-orders/pkg/shutdown"
	"github.com/dmehra2102/marketplace-orders/pkg/tracing"
)

const service = "order-service"

func main() {
	log := logging.New(service)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Configuration
	httpAddr := env("HTTP_ADDR", ":8080")
	store := env("ORDER_STORE", "mongo")
	mongoURI := env("MONGO_URI", "mongodb://localhost:27017")
	mongoDB := env("MONGO_DB", "marketplace")
	productURL := env("PRODUCT_SERVICE_URL", "http://localhost:8082")
	collabTimeout := envDuration("COLLABORATOR_TIMEOUT", 5*time.Second)
	jwtSecret := []byte(env("JWT_SECRET", "dev-secret"))
	origins := envList("CORS_ORIGIN")

	tp, err := tracing.Init(ctx, service, env("OTEL_ENDPOINT", ""), log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	// Order store
	var (
		repo       application.OrderRepository
		storeHooks []shutdown.Hook
	)
	switch store {
	case "memory":
		log.Warn("using in-memory order store, data is lost on restart")
		repo = ordermemory.NewRepository()
	default:
		db, err := ordermongo.Connect(ctx, mongoURI, mongoDB)
		if err != nil {
			log.Error("mongo connect failed", "err", err)
			os.Exit(1)
		}
		mrepo := ordermongo.NewRepository(log, db)
		if err := mrepo.EnsureIndexes(ctx); err != nil {
			log.Error("mongo indexes failed", "err", err)
			os.Exit(1)
		}
		repo = mrepo
		storeHooks = append(storeHooks, shutdown.Hook{Name: "mongo", Stop: db.Client().Disconnect})
	}

	products := catalog.NewProductClient(log, collab.New(log, "inventory-service", productURL, collabTimeout))
	svc := application.NewService(log, repo, products, clock.NewSystem())

	hub := chatapp.NewHub(log)
	channel := chatapp.NewChannel(log, hub, svc)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, httpx.RequestLogger(log), middleware.Recoverer, httpx.CORS(origins), auth.Middleware(jwtSecret, log))
	r.Get("/", httpx.Health(service))
	r.Handle("/ws", chatws.NewHandler(log, channel, origins))
	r.Mount("/", orderhttp.NewHandler(log, svc).Routes())

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	hooks := append([]shutdown.Hook{{Name: "http", Stop: srv.Shutdown}}, storeHooks...)
	hooks = append(hooks, shutdown.Hook{Name: "tracing", Stop: tp.Shutdown})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", httpAddr, "store", store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown.Drain(log, 10*time.Second, hooks...)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("order-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("order-service shutdown complete", "open_rooms", hub.Rooms())
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(env(k, ""))
	if err != nil {
		return def
	}
	return d
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

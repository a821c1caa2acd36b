package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hometrade/commsguard/internal/application"
	appmod "github.com/hometrade/commsguard/internal/application/moderation"
	"github.com/hometrade/commsguard/internal/config"
	aiclient "github.com/hometrade/commsguard/internal/infra/ai/openai"
	mysqlp "github.com/hometrade/commsguard/internal/infra/db/mysql"
	postgresp "github.com/hometrade/commsguard/internal/infra/db/postgres"
	"github.com/hometrade/commsguard/internal/infra/extract"
	"github.com/hometrade/commsguard/internal/infra/httpserver"
	minioStore "github.com/hometrade/commsguard/internal/infra/storage"
	"github.com/hometrade/commsguard/internal/middleware"
	"github.com/hometrade/commsguard/internal/stats"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database and build the repository set for the configured driver
	var (
		db  *sql.DB
		svc = &appmod.Service{}
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		svc.Messages = postgresp.NewMessageRepository(db)
		svc.Audit = postgresp.NewAuditRepository(db)
		svc.Annotations = postgresp.NewAnnotationRepository(db)
		svc.Bids = postgresp.NewBidRepository(db)
		svc.Transactions = postgresp.NewTransactionRegistry(db)
		svc.StageErrors = postgresp.NewStageErrorRepository(db)
	case "mysql", "":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		svc.Messages = mysqlp.NewMessageRepository(db)
		svc.Audit = mysqlp.NewAuditRepository(db)
		svc.Annotations = mysqlp.NewAnnotationRepository(db)
		svc.Bids = mysqlp.NewBidRepository(db)
		svc.Transactions = mysqlp.NewTransactionRegistry(db)
		svc.StageErrors = mysqlp.NewStageErrorRepository(db)
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}
	defer db.Close()

	// init minio (evidence snapshots of blocked attachments)
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init classifier + extractor
	models := cfg.OpenAI.Models
	if len(models) == 0 {
		models = aiclient.DefaultModels
	}
	collector := stats.NewCollector()

	svc.Classifier = aiclient.NewClient(cfg.OpenAI.APIKey, models)
	svc.Extractor = extract.New()
	svc.Evidence = store
	svc.Stats = collector
	svc.Clock = application.SystemClock{}
	svc.Version = cfg.Pipeline.Version
	if cfg.Pipeline.CallTimeoutSeconds > 0 {
		svc.CallTimeout = time.Duration(cfg.Pipeline.CallTimeoutSeconds) * time.Second
	}

	// init router
	httpMetrics := middleware.NewHTTPMetrics()
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(httpMetrics.Middleware)
	if len(cfg.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
		mux.Use(middleware.RequireTenantMatch)
	}
	mux.Use(middleware.RateLimitMiddleware(60, 1))
	mux.Get("/metrics/http", httpMetrics.Handler)
	mux.Mount("/", httpserver.NewRouter(svc, collector, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

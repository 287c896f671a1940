package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/bizverify/internal/application"
	"github.com/bryanwahyu/bizverify/internal/application/analysis"
	"github.com/bryanwahyu/bizverify/internal/application/documents"
	"github.com/bryanwahyu/bizverify/internal/config"
	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/infra/ai/gemini"
	"github.com/bryanwahyu/bizverify/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/bizverify/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/bizverify/internal/infra/db/postgres"
	"github.com/bryanwahyu/bizverify/internal/infra/httpserver"
	gmaps "github.com/bryanwahyu/bizverify/internal/infra/maps"
	"github.com/bryanwahyu/bizverify/internal/infra/memstore"
	"github.com/bryanwahyu/bizverify/internal/infra/scrape"
	minioStore "github.com/bryanwahyu/bizverify/internal/infra/storage"
	"github.com/bryanwahyu/bizverify/internal/middleware"
	"github.com/bryanwahyu/bizverify/internal/ratelimit"
)

func main() {
	// .env kalau ada, biar API key nggak perlu di-export manual
	_ = godotenv.Load()

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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	checkers := map[string]middleware.HealthChecker{}

	// run history repo, optional
	var runs domain.RunRepository
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		runs = mysqlp.NewRunRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		runs = postgresp.NewRunRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "":
		logger.Info("run history disabled, no database driver configured")
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}

	// init minio
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
	checkers["storage"] = middleware.CheckerFunc(store.Ping)

	// init maps clients
	geocoder, err := gmaps.NewGeocoder(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("geocoder init error: %v", err)
	}
	streetView := gmaps.NewStreetView(cfg.Maps.APIKey)

	// init model runner
	var runner domain.Runner
	switch cfg.AI.Provider {
	case "openai":
		runner = openai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	case "gemini", "":
		runner, err = gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini init error: %v", err)
		}
	default:
		log.Fatalf("unknown ai provider: %s", cfg.AI.Provider)
	}

	// street view quota limiter
	quota := cfg.StreetView.Quota
	if quota <= 0 {
		quota = ratelimit.DefaultQuota
	}
	window := cfg.StreetViewWindow()
	if window <= 0 {
		window = ratelimit.DefaultWindow
	}
	limiter := ratelimit.New(quota, window)

	sessions := memstore.New()

	// init services
	analysisSvc := &analysis.Service{
		Sessions:       sessions,
		Artifacts:      sessions,
		Documents:      store,
		Scraper:        scrape.New(cfg.ScraperTimeout()),
		Geocoder:       geocoder,
		Images:         streetView,
		Runner:         runner,
		Limiter:        limiter,
		Runs:           runs,
		Clock:          application.SystemClock{},
		Logger:         logger,
		MaxScrapePages: cfg.Scraper.MaxPages,
		MaxImages:      cfg.StreetView.MaxImages,
	}
	docsSvc := &documents.Service{Store: store}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(analysisSvc, docsSvc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

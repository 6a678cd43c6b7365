package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/tullogher/gaa-fixtures/internal/calendar"
	"github.com/tullogher/gaa-fixtures/internal/config"
	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	cacherepo "github.com/tullogher/gaa-fixtures/internal/infrastructure/repository/cache"
	"github.com/tullogher/gaa-fixtures/internal/infrastructure/repository/sqlite"
	"github.com/tullogher/gaa-fixtures/internal/interfaces/httpapi"
	"github.com/tullogher/gaa-fixtures/internal/platform/cache"
	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
	"github.com/tullogher/gaa-fixtures/internal/platform/resilience"
	"github.com/tullogher/gaa-fixtures/internal/scraper"
	"github.com/tullogher/gaa-fixtures/internal/usecase"
)

// App wires the fixtures pipeline together: sqlite storage, the upstream
// scraper, the refresh scheduler, and the HTTP API.
type App struct {
	Server    *http.Server
	Scheduler *usecase.Scheduler

	cfg    config.Config
	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var repo fixture.Repository = sqlite.NewFixtureRepository(db)
	if cfg.CacheEnabled {
		repo = cacherepo.NewFixtureRepository(repo, cache.NewStore(cfg.CacheTTL))
	}

	client := scraper.NewClient(scraper.ClientConfig{
		BaseURL:       cfg.FixturesBaseURL,
		ClubID:        cfg.ClubID,
		CountyBoardID: cfg.CountyBoardID,
		Timeout:       cfg.FixturesTimeout,
		MaxRetries:    cfg.FixturesMaxRetries,
		Logger:        logger,
		Breaker: resilience.BreakerConfig{
			FailureThreshold: cfg.FixturesCircuitFailureCount,
			Cooldown:         cfg.FixturesCircuitOpenTimeout,
			HalfOpenProbes:   cfg.FixturesCircuitHalfOpenMaxReq,
		},
	})
	source := scraper.New(client, scraper.NewParser(logger))

	fixtureService := usecase.NewFixtureService(repo, calendar.NewGenerator(cfg.ClubID))
	refreshService := usecase.NewRefreshService(source, repo, logger)

	var scheduler *usecase.Scheduler
	if cfg.SchedulerEnabled {
		scheduler = usecase.NewScheduler(refreshService, cfg.FetchInterval, logger)
	}

	handler := httpapi.NewHandler(fixtureService, refreshService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		cfg:       cfg,
		db:        db,
		logger:    logger,
	}, nil
}

// Start launches the background refresh scheduler when enabled.
func (a *App) Start(ctx context.Context) {
	if a.Scheduler == nil {
		a.logger.Info("refresh scheduler disabled")
		return
	}
	a.Scheduler.Start(ctx)
}

// Shutdown stops the HTTP server, waits for the scheduler to drain, and
// closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)

	if a.Scheduler != nil {
		a.Scheduler.Wait()
	}

	if closeErr := a.db.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

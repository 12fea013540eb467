package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"weekly-planner/internal/config"
	"weekly-planner/internal/database"
	"weekly-planner/internal/ghost"
	"weekly-planner/internal/loader"
	"weekly-planner/internal/metrics"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/storage"
)

// Services is the wired application plus the resources it owns.
type Services struct {
	App     *App
	DB      *database.DB
	Metrics *metrics.Store
}

// Setup opens the database, loads the meal data and wires the App.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	catalog, err := loader.New(dataSource(cfg), logger).Load(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if catalog.Empty() {
		logger.Warn("Meal catalog is empty", zap.String("data_url", cfg.DataURL), zap.String("data_dir", cfg.DataDir))
	}

	seed1, seed2 := cfg.Seed, cfg.Seed
	if cfg.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	mealPlanner := planner.NewPlanner(catalog, rand.New(rand.NewPCG(seed1, seed2)))

	var ghostClient ghost.Client
	if cfg.GhostEnabled() {
		ghostClient = ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
	}

	metricsStore := metrics.NewStore(db.SQL)
	application := NewApp(
		mealPlanner,
		planner.NewPlanRepository(db.SQL),
		storage.NewPreferences(storage.NewStore(db.SQL), logger),
		metricsStore,
		ghostClient,
		logger,
	)
	return &Services{App: application, DB: db, Metrics: metricsStore}, nil
}

// Close releases the database.
func (s *Services) Close() error {
	return s.DB.Close()
}

func dataSource(cfg *config.Config) loader.Source {
	switch {
	case cfg.DataURL != "":
		return loader.NewHTTPSource(cfg.DataURL, nil)
	case cfg.DataDir != "":
		return loader.NewFSSource(os.DirFS(cfg.DataDir))
	default:
		return loader.DefaultSource()
	}
}

// internal/app/app.go

package app

import (
	"fmt"

	"go.uber.org/zap"

	"mixee/internal/adapter/storage"
	"mixee/internal/config"
	"mixee/internal/content"
	"mixee/internal/domain/activity"
	activityService "mixee/internal/service/activity"
	"mixee/internal/service/schedule"
	"mixee/internal/service/setup"
)

// App owns every simulation object; nothing in the process is ambient
type App struct {
	Catalog *content.Catalog
	Pulse   *activityService.Pulse
	Badges  *activityService.NavigationBadges
	Shell   *activity.Shell
	Setup   *setup.Service
}

// New wires the simulation from configuration. Everything starts inactive.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	catalog, err := content.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}

	rng := schedule.NewRand(cfg.Simulation.Seed)

	pulse, err := activityService.NewPulse(catalog, rng, activityService.PulseConfig{
		PresencePeriod: cfg.Simulation.PresencePeriod,
		ContentPeriod:  cfg.Simulation.ContentPeriod,
		Generator: activityService.GeneratorConfig{
			LocationProbability: cfg.Simulation.LocationProbability,
			MinInterval:         cfg.Simulation.MinEventInterval,
			MaxInterval:         cfg.Simulation.MaxEventInterval,
		},
		Feed: activityService.FeedServiceConfig{
			Capacity:  cfg.Simulation.FeedCapacity,
			SeedCount: cfg.Simulation.SeedEvents,
		},
	}, logger.Named("pulse"))
	if err != nil {
		return nil, fmt.Errorf("error creating pulse: %w", err)
	}

	badges, err := activityService.NewNavigationBadges(catalog, rng, activityService.BadgeConfig{
		Period:      cfg.Badges.Period,
		Probability: cfg.Badges.Probability,
		Ceiling:     cfg.Badges.Ceiling,
		Threshold:   cfg.Badges.Threshold,
	}, logger.Named("badges"))
	if err != nil {
		pulse.Dispose()
		return nil, fmt.Errorf("error creating badges: %w", err)
	}

	var prober setup.Prober
	if cfg.Setup.ProbeEnabled {
		prober = storage.NewPostgresProbe()
	}

	return &App{
		Catalog: catalog,
		Pulse:   pulse,
		Badges:  badges,
		Shell:   activity.NewShell(),
		Setup:   setup.NewService(prober, cfg.Setup.ProbeTimeout),
	}, nil
}

// Dispose stops every schedule owned by the app
func (a *App) Dispose() {
	a.Pulse.Dispose()
	a.Badges.Dispose()
}

package background

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"provender/internal/services"
)

// JobScheduler runs the periodic risk scan and the derived-column refresh.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    services.AlertService
	ledger    services.StockLedgerService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(alerts services.AlertService, ledger services.StockLedgerService,
	scanInterval, recomputeInterval time.Duration) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		ledger:    ledger,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(scanInterval, recomputeInterval); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(scanInterval, recomputeInterval time.Duration) error {
	// Singleton mode: a slow scan must not overlap the next tick.
	scanJob, err := js.scheduler.NewJob(
		gocron.DurationJob(scanInterval),
		gocron.NewTask(js.runRiskScan, context.Background()),
		gocron.WithName("risk-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["risk-scan"] = scanJob

	recomputeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(recomputeInterval),
		gocron.NewTask(js.runRecompute, context.Background()),
		gocron.WithName("derived-recompute"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["derived-recompute"] = recomputeJob

	return nil
}

func (js *JobScheduler) runRiskScan(ctx context.Context) {
	started := time.Now()
	if err := js.alerts.Scan(ctx); err != nil {
		log.Error().Err(err).Msg("risk scan failed")
		return
	}
	log.Info().Dur("took", time.Since(started)).Msg("risk scan completed")
}

func (js *JobScheduler) runRecompute(ctx context.Context) {
	refreshed, err := js.ledger.RecomputeDerived(ctx)
	if err != nil {
		log.Error().Err(err).Msg("derived recompute failed")
		return
	}
	log.Info().Int("materials", refreshed).Msg("derived columns refreshed")
}

// JobStatus lists the registered job names, for the health endpoint.
func (js *JobScheduler) JobStatus() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

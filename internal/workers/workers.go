package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/service"
	"golang.org/x/sync/errgroup"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker and waits for all of them. It returns the first
// non-nil error.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}
	return g.Wait()
}

// SyncWorker drives a [service.SyncJob] for one signed-in vault.
type SyncWorker struct {
	job      service.SyncJob
	vaultID  int64
	session  *service.Session
	interval time.Duration
	logger   *logger.Logger
}

func NewSyncWorker(job service.SyncJob, vaultID int64, session *service.Session, interval time.Duration, log *logger.Logger) *SyncWorker {
	return &SyncWorker{
		job:      job,
		vaultID:  vaultID,
		session:  session,
		interval: interval,
		logger:   log,
	}
}

// Run starts the job and stops it once ctx is done.
func (s *SyncWorker) Run(ctx context.Context) error {
	s.logger.Info().Str("func", "SyncWorker.Run").
		Int64("vault_id", s.vaultID).
		Dur("interval", s.interval).
		Msg("background sync started")

	s.job.Start(ctx, s.vaultID, s.session, s.interval)
	<-ctx.Done()
	s.job.Stop()

	s.logger.Info().Str("func", "SyncWorker.Run").Int64("vault_id", s.vaultID).Msg("background sync stopped")
	return nil
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
)

type syncJob struct {
	vaults  VaultRegistry
	auth    AuthSessionManager
	pending PendingOperationProcessor
	upload  UploadProcessor
	sync    SyncOrchestrator
	locks   *VaultLocks

	refreshMargin time.Duration
	logger        *logger.Logger
	now           func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SyncJobDeps groups the collaborators of [NewSyncJob]. With Locks set, a
// tick is skipped while another caller holds the vault.
type SyncJobDeps struct {
	Vaults  VaultRegistry
	Auth    AuthSessionManager
	Pending PendingOperationProcessor
	Upload  UploadProcessor
	Sync    SyncOrchestrator
	Locks   *VaultLocks
}

// NewSyncJob creates a job that drains the offline queue, uploads local
// changes and pulls the server snapshot. The job is idle until Start is
// called.
func NewSyncJob(deps SyncJobDeps, refreshMargin time.Duration, log *logger.Logger) SyncJob {
	return &syncJob{
		vaults:        deps.Vaults,
		auth:          deps.Auth,
		pending:       deps.Pending,
		upload:        deps.Upload,
		sync:          deps.Sync,
		locks:         deps.Locks,
		refreshMargin: refreshMargin,
		logger:        log,
		now:           time.Now,
	}
}

// Start implements SyncJob. The goroutine exits when ctx is cancelled or
// Stop is called.
func (j *syncJob) Start(ctx context.Context, vaultID int64, session *Session, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if j.vaultBusy(vaultID) {
					j.logger.Debug().Str("func", "syncJob.Start").Int64("vault_id", vaultID).Msg("vault busy, tick skipped")
					continue
				}
				res, err := j.RunOnce(jobCtx, vaultID, session)
				if err != nil {
					j.logger.Err(err).Str("func", "syncJob.Start").Int64("vault_id", vaultID).Msg("sync cycle failed")
					continue
				}
				if blocked, ok := res.(EmptyVaultBlocked); ok {
					j.logger.Warn().Str("func", "syncJob.Start").
						Int64("vault_id", vaultID).
						Int("local_count", blocked.LocalCount).
						Msg("sync blocked, waiting for confirmation")
				}
			}
		}
	}()
}

// vaultBusy reports whether another caller holds the vault lock. Each phase
// of RunOnce takes the lock on its own, so it is released right away.
func (j *syncJob) vaultBusy(vaultID int64) bool {
	if j.locks == nil {
		return false
	}
	release, ok := j.locks.TryAcquire(vaultID)
	if !ok {
		return true
	}
	release()
	return false
}

// RunOnce implements SyncJob. Queue and upload failures are logged and do
// not prevent the pull; a refresh failure aborts the cycle.
func (j *syncJob) RunOnce(ctx context.Context, vaultID int64, session *Session, opts ...SyncOption) (SyncResult, error) {
	key := session.Key()
	if key == nil || key.Closed() {
		return nil, ErrSessionClosed
	}

	vault, err := j.vaults.Get(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}

	if session.NeedsRefresh(j.now(), j.refreshMargin) {
		if err = j.auth.RefreshToken(ctx, session); err != nil {
			return nil, fmt.Errorf("refresh access token: %w", err)
		}
	}
	token := session.AccessToken()

	if _, err = j.pending.Process(ctx, vault, token, key); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		j.logger.Warn().Err(err).Str("func", "syncJob.RunOnce").Int64("vault_id", vaultID).Msg("pending queue not processed")
	}

	if _, err = j.upload.UploadPending(ctx, vault, token, key); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		j.logger.Warn().Err(err).Str("func", "syncJob.RunOnce").Int64("vault_id", vaultID).Msg("local changes not uploaded")
	}

	res, err := j.sync.FullSync(ctx, vault, token, key, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := res.(SyncCompleted); ok {
		if _, err = j.pending.PurgeCompleted(ctx, vaultID); err != nil {
			j.logger.Warn().Err(err).Str("func", "syncJob.RunOnce").Int64("vault_id", vaultID).Msg("completed operations not purged")
		}
	}
	return res, nil
}

// Stop implements SyncJob. Safe to call when the job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"salespulse-api/internal/crm"
	"salespulse-api/internal/domain"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/telemetry"

	"go.uber.org/zap"
)

// ErrSyncInProgress is returned when a full sync is already running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Sync phase progress checkpoints.
const (
	progressAuthenticated = 20
	progressOpportunities = 40
	progressAccounts      = 60
	progressUsers         = 80
	progressDone          = 100
)

// SyncService runs the full refresh cycle against the CRM and tracks
// its status. Phases are strictly sequential; only one sync may run
// at a time.
type SyncService struct {
	gateway   crm.Gateway
	sample    crm.Source
	dashboard *DashboardService
	metrics   *telemetry.AppMetrics
	log       *logger.Logger

	mu     sync.Mutex
	status domain.SyncStatus
}

// NewSyncService wires the sync cycle. gateway may be nil; sync then
// refreshes counts from the sample source.
func NewSyncService(gateway crm.Gateway, sample crm.Source, dashboard *DashboardService, metrics *telemetry.AppMetrics, log *logger.Logger) *SyncService {
	return &SyncService{
		gateway:   gateway,
		sample:    sample,
		dashboard: dashboard,
		metrics:   metrics,
		log:       log,
	}
}

// Status returns a snapshot of the current sync state.
func (s *SyncService) Status() domain.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status
	conn := s.dashboard.ConnectionState()
	st.Connected = conn.Connected
	st.UsingSampleData = conn.UsingSampleData
	return st
}

// Start launches a full sync in the background. Returns
// ErrSyncInProgress when one is already running.
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status.InProgress {
		s.mu.Unlock()
		return ErrSyncInProgress
	}
	s.status.InProgress = true
	s.status.Progress = 0
	s.status.LastError = ""
	s.mu.Unlock()

	// Detach from the request context so a closed connection does not
	// abort the refresh midway.
	go s.run(context.WithoutCancel(ctx))
	return nil
}

// FullSync runs the refresh cycle synchronously. Used by the one-shot
// CLI command; the HTTP surface goes through Start.
func (s *SyncService) FullSync(ctx context.Context) (domain.SyncStatus, error) {
	if err := s.Start(ctx); err != nil {
		return s.Status(), err
	}
	// Start runs in the background; poll until it finishes.
	for s.Status().InProgress {
		select {
		case <-ctx.Done():
			return s.Status(), ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	st := s.Status()
	if st.LastError != "" {
		return st, errors.New(st.LastError)
	}
	return st, nil
}

func (s *SyncService) run(ctx context.Context) {
	start := time.Now()
	s.log.Info(ctx, "full sync started",
		logger.Module("sync"),
		logger.Action("full_sync"),
	)

	live, counts, err := s.phases(ctx)

	s.mu.Lock()
	s.status.InProgress = false
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		now := time.Now()
		s.status.Progress = progressDone
		s.status.LastSync = &now
		s.status.Counts = counts
		s.status.Counts.LastUpdated = &now
	}
	s.mu.Unlock()

	result := "ok"
	if err != nil {
		result = "error"
		s.log.Error(ctx, "full sync failed",
			logger.Module("sync"),
			logger.Action("full_sync"),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
	} else {
		s.log.Info(ctx, "full sync completed",
			logger.Module("sync"),
			logger.Action("full_sync"),
			zap.Bool("live", live),
			zap.Int("opportunities", counts.Opportunities),
			zap.Int("accounts", counts.Accounts),
			zap.Int("users", counts.Users),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	if s.metrics != nil {
		s.metrics.SyncRuns.WithLabelValues(result).Inc()
	}
}

// phases executes the sequential sync steps, advancing the progress
// checkpoint after each one.
func (s *SyncService) phases(ctx context.Context) (bool, domain.DataCounts, error) {
	var src crm.Source = s.sample
	live := false
	if s.gateway != nil {
		if err := s.gateway.Authenticate(ctx); err != nil {
			// Auth failure is not fatal to the sync: it refreshes the
			// sample snapshot instead, mirroring the dashboard path.
			s.dashboard.engageFallback(ctx, err)
		} else {
			s.dashboard.ResetFallback()
			src = s.gateway
			live = true
		}
	}
	s.setProgress(progressAuthenticated)

	return s.collect(ctx, src, live)
}

// collect pulls the three record sets. A live query that fails
// authentication mid-flight flips the dashboard into sample fallback
// and restarts collection against the sample snapshot.
func (s *SyncService) collect(ctx context.Context, src crm.Source, live bool) (bool, domain.DataCounts, error) {
	var counts domain.DataCounts

	opps, err := src.Opportunities(ctx, defaultOpenLimit)
	if err != nil {
		if s.dashboard.absorbAuthFailure(ctx, live, err) {
			return s.collect(ctx, s.sample, false)
		}
		return live, counts, err
	}
	counts.Opportunities = len(opps)
	s.setProgress(progressOpportunities)

	accounts, err := src.Accounts(ctx, accountsLimit)
	if err != nil {
		if s.dashboard.absorbAuthFailure(ctx, live, err) {
			return s.collect(ctx, s.sample, false)
		}
		return live, counts, err
	}
	counts.Accounts = len(accounts)
	s.setProgress(progressAccounts)

	users, err := src.Users(ctx)
	if err != nil {
		if s.dashboard.absorbAuthFailure(ctx, live, err) {
			return s.collect(ctx, s.sample, false)
		}
		return live, counts, err
	}
	counts.Users = len(users)
	s.setProgress(progressUsers)

	return live, counts, nil
}

func (s *SyncService) setProgress(p int) {
	s.mu.Lock()
	s.status.Progress = p
	s.mu.Unlock()
}

package service

import (
	"context"
	"testing"
	"time"

	"salespulse-api/internal/crm"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSync(t *testing.T, gw crm.Gateway) (*SyncService, *DashboardService) {
	t.Helper()
	log, err := logger.New("test", "error")
	require.NoError(t, err)
	sample := crm.NewSampleSource()
	metrics := telemetry.NewAppMetrics()
	dash := NewDashboardService(gw, sample, nil, metrics, log, testConfig())
	return NewSyncService(gw, sample, dash, metrics, log), dash
}

func waitForSync(t *testing.T, svc *SyncService) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.Status().InProgress {
		if time.Now().After(deadline) {
			t.Fatal("sync did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSyncService_FullSyncCountsLiveData(t *testing.T) {
	gw := &fakeGateway{
		opportunities: []crm.Opportunity{
			openOpportunity("1", 10000, "Prospecting"),
			openOpportunity("2", 20000, "Qualification"),
		},
		accounts: []crm.Account{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		users:    []crm.User{{ID: "u1"}},
	}
	svc, dash := newTestSync(t, gw)

	status, err := svc.FullSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, status.Progress)
	assert.False(t, status.InProgress)
	assert.Equal(t, 2, status.Counts.Opportunities)
	assert.Equal(t, 3, status.Counts.Accounts)
	assert.Equal(t, 1, status.Counts.Users)
	require.NotNil(t, status.LastSync)
	assert.Empty(t, status.LastError)
	assert.True(t, dash.ConnectionState().Connected)
}

func TestSyncService_AuthFailureFallsBackToSampleCounts(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 400, Message: "invalid_grant"}}
	svc, dash := newTestSync(t, gw)

	status, err := svc.FullSync(context.Background())
	require.NoError(t, err)

	// Sample dataset sizes: 5 open opportunities, 3 accounts, 5 users.
	assert.Equal(t, 5, status.Counts.Opportunities)
	assert.Equal(t, 3, status.Counts.Accounts)
	assert.Equal(t, 5, status.Counts.Users)
	assert.True(t, status.UsingSampleData)
	assert.True(t, dash.ConnectionState().UsingSampleData)
}

func TestSyncService_QueryAuthFailureFallsBackToSampleCounts(t *testing.T) {
	// Authentication succeeds but the session is rejected mid-phase:
	// the sync restarts against sample data instead of failing.
	gw := &fakeGateway{queryErr: &crm.AuthError{Status: 401, Message: "session expired"}}
	svc, dash := newTestSync(t, gw)

	status, err := svc.FullSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, status.Counts.Opportunities)
	assert.Equal(t, 3, status.Counts.Accounts)
	assert.Equal(t, 5, status.Counts.Users)
	assert.True(t, status.UsingSampleData)
	assert.True(t, dash.ConnectionState().UsingSampleData)
	assert.Empty(t, status.LastError)
}

func TestSyncService_SuccessfulSyncClearsFallback(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 400, Message: "bad creds"}}
	svc, dash := newTestSync(t, gw)

	// Engage fallback via a dashboard read.
	_, err := dash.Overview(context.Background())
	require.NoError(t, err)
	require.True(t, dash.ConnectionState().UsingSampleData)

	gw.mu.Lock()
	gw.authErr = nil
	gw.opportunities = []crm.Opportunity{openOpportunity("1", 10000, "Prospecting")}
	gw.mu.Unlock()

	_, err = svc.FullSync(context.Background())
	require.NoError(t, err)

	assert.False(t, dash.ConnectionState().UsingSampleData)
}

func TestSyncService_RejectsConcurrentSync(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestSync(t, gw)

	require.NoError(t, svc.Start(context.Background()))
	err := svc.Start(context.Background())
	if err != nil {
		assert.ErrorIs(t, err, ErrSyncInProgress)
	}
	waitForSync(t, svc)

	// Once finished, a new sync is accepted again.
	require.NoError(t, svc.Start(context.Background()))
	waitForSync(t, svc)
}

func TestSyncService_QueryErrorRecorded(t *testing.T) {
	gw := &fakeGateway{queryErr: &crm.APIError{Status: 500, Message: "boom"}}
	svc, _ := newTestSync(t, gw)

	status, err := svc.FullSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, status.LastError, "boom")
	assert.False(t, status.InProgress)
	assert.Nil(t, status.LastSync)
}

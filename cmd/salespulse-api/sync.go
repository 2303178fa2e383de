package main

import (
	"context"
	"fmt"

	"salespulse-api/internal/config"
	"salespulse-api/internal/crm"
	"salespulse-api/internal/http/client"
	"salespulse-api/internal/insight"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/service"
	"salespulse-api/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-shot CRM sync and exit",
	Long:  `Fetch opportunities, accounts and users from the configured CRM once, report the record counts, and exit. Falls back to the sample dataset when the CRM is unreachable.`,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	var gateway crm.Gateway
	if cfg.SalesforceConfigured() {
		gateway = crm.NewClient(crm.Config{
			TokenURL:      cfg.SalesforceTokenURL,
			ClientID:      cfg.SalesforceClientID,
			ClientSecret:  cfg.SalesforceClientSecret,
			Username:      cfg.SalesforceUsername,
			Password:      cfg.SalesforcePassword,
			SecurityToken: cfg.SalesforceSecurityToken,
			HTTPClient:    client.NewExternalHTTPClient(),
		}, log)
	} else {
		log.Info(ctx, "salesforce credentials missing, syncing sample data")
	}
	sample := crm.NewSampleSource()

	rules := insight.DefaultRuleConfig()
	rules.QuarterlyQuota = cfg.InsightQuarterlyQuota

	metrics := telemetry.NewAppMetrics()
	dashboard := service.NewDashboardService(gateway, sample, nil, metrics, log, service.DashboardConfig{
		QuarterlyQuota:      cfg.QuarterlyQuota,
		ClosedWonWindowDays: cfg.ClosedWonWindowDays,
		Rules:               rules,
		Stats:               insight.DefaultStatConfig(),
	})
	syncService := service.NewSyncService(gateway, sample, dashboard, metrics, log)

	status, err := syncService.FullSync(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	source := "live"
	if status.UsingSampleData {
		source = "sample"
	}
	log.Info(ctx, "sync finished",
		zap.String("source", source),
		zap.Int("opportunities", status.Counts.Opportunities),
		zap.Int("accounts", status.Counts.Accounts),
		zap.Int("users", status.Counts.Users),
	)
	fmt.Printf("synced %d opportunities, %d accounts, %d users from %s data\n",
		status.Counts.Opportunities, status.Counts.Accounts, status.Counts.Users, source)
	return nil
}

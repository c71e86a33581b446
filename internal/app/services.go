package app

import (
	"context"
	"database/sql"
	"log"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadlines/internal/config"
	"roadlines/internal/push"
	internalRedis "roadlines/internal/redis"
	"roadlines/internal/repository/postgres"
	"roadlines/internal/service"
)

// NewNewRelic starts the New Relic agent when it is enabled and licensed.
// A failed start is logged and yields nil, which disables instrumentation.
func NewNewRelic(cfg config.NewRelicConfig) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Printf("failed to initialize New Relic: %v", err)
		return nil
	}

	log.Printf("New Relic enabled: app=%s", cfg.AppName)
	return nrApp
}

// NewPushSender returns an FCM sender when credentials are configured and a
// logging no-op sender otherwise.
func NewPushSender(ctx context.Context, cfg config.PushConfig) push.Sender {
	if !cfg.Enabled() {
		return push.NewNoopSender()
	}

	sender, err := push.NewFCMSender(ctx, []byte(cfg.ServiceAccountJSON))
	if err != nil {
		log.Printf("push disabled: invalid FIREBASE_SERVICE_ACCOUNT: %v", err)
		return push.NewNoopSender()
	}

	return sender
}

// NewNotifier wires the overdue notifier. redisClient may be nil, in which
// case the dedup ledger is unavailable even when enabled.
func NewNotifier(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
) *service.NotifierService {
	var ledger internalRedis.NotificationLedgerInterface
	if cfg.Notifier.DedupEnabled {
		if redisClient != nil {
			ledger = internalRedis.NewNotificationLedger(redisClient)
		} else {
			log.Println("notifier: dedup enabled but redis is unavailable; running without ledger")
		}
	}

	return service.NewNotifierService(
		postgres.NewTripRepository(db),
		postgres.NewDeviceTokenRepository(db),
		NewPushSender(ctx, cfg.Push),
		ledger,
		nrApp,
		config.Location(cfg.Notifier.TimeZone),
	)
}

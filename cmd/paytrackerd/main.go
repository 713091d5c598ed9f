package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pawmart/paytracker/internal/config"
	"github.com/pawmart/paytracker/internal/core/application"
	"github.com/pawmart/paytracker/internal/core/domain"
	"github.com/pawmart/paytracker/internal/infrastructure/notifier"
	dbbadger "github.com/pawmart/paytracker/internal/infrastructure/storage/db/badger"
	"github.com/pawmart/paytracker/internal/infrastructure/storage/db/inmemory"
	"github.com/pawmart/paytracker/pkg/gateway"
	"github.com/pawmart/paytracker/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.GetBool(config.EnableProfilerKey) {
		interval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		profilerDatadir := filepath.Join(config.GetDatadir(), config.ProfilerLocation)
		stats.EnableMemoryStatistics(ctx, interval, profilerDatadir)
	}

	repository, closeRepo, err := openRepository()
	if err != nil {
		log.WithError(err).Fatal("failed to open payments db")
	}
	defer closeRepo()

	gatewaySvc, err := gateway.NewService(config.GetString(config.GatewayUrlKey))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to payment gateway")
	}

	notifierSvc, err := newNotifier()
	if err != nil {
		log.WithError(err).Fatal("invalid webhook config")
	}

	trackerSvc := application.NewTrackerService(application.TrackerOpts{
		GatewaySvc:        gatewaySvc,
		PaymentRepository: repository,
		NotifierSvc:       notifierSvc,
		PollInterval:      time.Duration(config.GetInt(config.PollIntervalKey)) * time.Second,
		TerminalDelay:     time.Duration(config.GetInt(config.TerminalDelayKey)) * time.Second,
	})
	defer trackerSvc.StopAll()

	if err := trackerSvc.ResumePendingPayments(ctx); err != nil {
		log.WithError(err).Warn("failed to resume pending payments")
	}

	log.Info("tracker daemon is running, press ctrl+c to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
}

func openRepository() (domain.PaymentRepository, func(), error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		return inmemory.NewPaymentRepositoryImpl(), func() {}, nil
	}

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	repository, err := dbbadger.NewPaymentRepositoryImpl(dbDir, nil)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}
	if closer, ok := repository.(interface{ Close() }); ok {
		closeFn = closer.Close
	}
	return repository, closeFn, nil
}

func newNotifier() (notifier.Service, error) {
	endpoints := config.GetStringSlice(config.WebhookEndpointsKey)
	if len(endpoints) <= 0 {
		return nil, nil
	}

	secret := config.GetString(config.WebhookSecretKey)
	hooks := make([]notifier.Webhook, 0, len(endpoints))
	for _, endpoint := range endpoints {
		hooks = append(hooks, notifier.Webhook{Endpoint: endpoint, Secret: secret})
	}
	return notifier.NewWebhookService(hooks)
}

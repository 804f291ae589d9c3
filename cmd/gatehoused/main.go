package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gatehouse-id/gatehouse/pkg/api"
	"github.com/gatehouse-id/gatehouse/pkg/challenge"
	"github.com/gatehouse-id/gatehouse/pkg/config"
	"github.com/gatehouse-id/gatehouse/pkg/credential"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
	"github.com/gatehouse-id/gatehouse/pkg/observability"
	"github.com/gatehouse-id/gatehouse/pkg/onboarding"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Configuration failures are the one startup error that aborts;
		// everything past this point degrades instead.
		observability.NewLogger("error", os.Stderr).WithError(err).Fatal("invalid configuration")
	}

	log := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	credentials := credential.NewCache(credential.Config{
		ClientID:        cfg.Credential.ClientID,
		ClientSecret:    cfg.Credential.ClientSecret,
		TokenURL:        cfg.Credential.TokenURL,
		RefreshSchedule: cfg.Credential.RefreshSchedule,
	}, log, credentialOptions(metrics)...)

	// Warm never aborts: a failed acquisition starts the process in
	// degraded mode and the scheduler keeps retrying.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), cfg.Server.ReadTimeout)
	credentials.Warm(warmCtx)
	cancelWarm()

	if err := credentials.StartScheduledRefresh(); err != nil {
		log.WithError(err).Error("credential refresh scheduler failed to start")
	}
	defer credentials.Stop()

	clientOpts := []identity.RESTClientOption{
		identity.WithOrgCache(cfg.Backend.OrgCacheSize, cfg.Backend.OrgCacheTTL),
	}
	if metrics != nil {
		clientOpts = append(clientOpts, identity.WithCallRecorder(metrics))
	}
	client := identity.NewRESTClient(cfg.Backend.BaseURL, credentials, log, clientOpts...)

	var recorder challenge.ChallengeRecorder
	if metrics != nil {
		recorder = metrics
	}
	orchestrator := challenge.NewOrchestrator(client, cfg.Backend.ServiceBaseURL, log, recorder)
	passwords := challenge.NewStateMachine(client, log, recorder)
	workflow := onboarding.NewWorkflow(client, log)
	translator := api.NewTranslator(cfg.Server.PublicBaseURL, log)

	server := api.NewServer(api.Dependencies{
		Client:        client,
		Orchestrator:  orchestrator,
		Passwords:     passwords,
		Onboarding:    workflow,
		Translator:    translator,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		Logger:        log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsHandler http.Handler
	if metrics != nil {
		metricsHandler = metrics.Handler()
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: api.NewHealthMux(credentials, metricsHandler),
	}

	go func() {
		log.WithField("addr", healthServer.Addr).Info("health listener starting")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("health listener failed")
		}
	}()

	go func() {
		log.WithField("addr", httpServer.Addr).Info("gatehouse listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := healthServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("health listener shutdown failed")
	}
}

func credentialOptions(metrics *observability.Metrics) []credential.Option {
	if metrics == nil {
		return nil
	}
	return []credential.Option{credential.WithRefreshRecorder(metrics)}
}

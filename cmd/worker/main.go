package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"customer-service-be/internal/config"
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/mailer"
	"customer-service-be/internal/service"
	pktNats "customer-service-be/pkg/nats"
)

// worker consumes domain events from the bus and raises alerts
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer subscriber.Close()

	var alertMailer mailer.IAlertMailer
	if cfg.SMTP.Host != "" {
		alertMailer = mailer.NewAlertMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.Email)
	} else {
		sysLogger.Warn("Worker", "SMTP not configured, security alerts are logged only", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alerts := service.NewAlertService(subscriber, alertMailer, cfg.App.AlertEmail, sysLogger)
	if err := alerts.Start(ctx); err != nil {
		sysLogger.Error("Worker", "Failed to subscribe", map[string]interface{}{"error": err.Error()})
		return
	}

	sysLogger.Info("Worker", "Listening for domain events", map[string]interface{}{"subject": pktNats.SubjectPattern})
	<-ctx.Done()
	sysLogger.Info("Worker", "Shutting down", nil)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/misua/quake-monitor-web/internal/adapter/http"
	"github.com/misua/quake-monitor-web/internal/adapter/ioc"
	kafkaadapter "github.com/misua/quake-monitor-web/internal/adapter/kafka"
	"github.com/misua/quake-monitor-web/internal/adapter/openmeteo"
	"github.com/misua/quake-monitor-web/internal/adapter/stormglass"
	"github.com/misua/quake-monitor-web/internal/adapter/usgs"
	"github.com/misua/quake-monitor-web/internal/config"
	"github.com/misua/quake-monitor-web/internal/observability"
	"github.com/misua/quake-monitor-web/internal/sealevel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Alert publishing is feature-flagged via KAFKA_BROKERS / ALERTS_ENABLED.
	var monitorOpts []sealevel.Option
	monitorOpts = append(monitorOpts, sealevel.WithFetchInterval(cfg.FetchInterval))

	var publisher *kafkaadapter.Publisher
	if cfg.AlertsEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		monitorOpts = append(monitorOpts, sealevel.WithAlertPublisher(publisher))
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("alert publishing disabled")
	}

	station := ioc.NewClient(cfg.IOCBaseURL, cfg.FetchTimeout, logger)
	monitor := sealevel.New(cfg.StationCode, station, logger, metrics, monitorOpts...)

	quakes := usgs.NewClient(cfg.USGSBaseURL, cfg.Latitude, cfg.Longitude, cfg.UpstreamTimeout, metrics, logger)

	tideClient := stormglass.NewClient(cfg.StormglassAPIKey, cfg.StormglassURL,
		cfg.Latitude, cfg.Longitude, cfg.UpstreamTimeout, metrics, logger)
	tides, err := stormglass.NewCachedTideSource(ctx, tideClient, cfg.TideCachePath, cfg.TideCacheTTL, metrics, logger)
	if err != nil {
		logger.Error("failed to open tide cache", "error", err)
		os.Exit(1)
	}

	weather := openmeteo.NewClient(cfg.OpenMeteoWeatherURL, cfg.OpenMeteoAirQualityURL,
		cfg.Latitude, cfg.Longitude, cfg.UpstreamTimeout, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Sources{
		SeaLevel: monitor,
		Quakes:   quakes,
		Tides:    tides,
		Weather:  weather,
	}, cfg.USGSFeed, cfg.LocationName, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("coastal monitor started",
		"station", cfg.StationCode, "location", cfg.LocationName, "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := tides.Close(); err != nil {
		logger.Error("tide cache close error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("alert publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

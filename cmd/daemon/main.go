package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/collector"
	"TariffSentinel/internal/config"
	"TariffSentinel/internal/coordinator"
	"TariffSentinel/internal/guard"
	"TariffSentinel/internal/metrics"
	"TariffSentinel/internal/model"
	"TariffSentinel/internal/mqtt"
	"TariffSentinel/internal/scheduler"
	"TariffSentinel/internal/store"
	"TariffSentinel/internal/version"
	"TariffSentinel/internal/web"
)

func main() {
	logrus.Infof("TariffSentinel %s starting...", version.Version())

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("config validation: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.Log.Level)
	} else {
		logrus.SetLevel(level)
	}

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			logrus.Warnf("init sqlite store failed, state will not survive restarts: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
		}
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// Init stale-value guard
	gd, err := guard.New(st)
	if err != nil {
		logrus.Fatalf("init stale-value guard: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.API.Mock {
		fetcher = &collector.MockFetcher{LowCode: cfg.API.LowTariffCode}
	} else {
		fetcher = collector.NewInnonetFetcher(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.StepMinutes, cfg.Timeout())
	}
	logrus.Infof("data source: %s", fetcher.Name())

	accountID := cfg.API.AccountID
	if inno, ok := fetcher.(*collector.InnonetFetcher); ok {
		if err := inno.ValidateKey(ctx); err != nil {
			var statusErr *collector.StatusError
			if errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
				logrus.Fatalf("API key rejected: %v", err)
			}
			logrus.Warnf("API key validation inconclusive, continuing: %v", err)
		}
	}
	if accountID == "" {
		if items, err := fetcher.Discover(ctx); err != nil {
			logrus.Warnf("account discovery failed, per-account name guesses unavailable: %v", err)
		} else if zpn := collector.ExtractZPN(items); zpn != "" {
			accountID = zpn
			logrus.Infof("discovered account identifier %s", zpn)
		}
	}

	// Init coordinator
	reg := metrics.NewRegistry()
	coord := coordinator.New(fetcher, gd, st, reg, coordinator.Options{
		AccountID:    accountID,
		LowCode:      cfg.API.LowTariffCode,
		HorizonHours: cfg.API.HorizonHours,
		Margin:       cfg.PreciseMargin(),
	})
	defer coord.Close()

	// Optional MQTT presentation
	if cfg.MQTT.Broker != "" {
		pub := mqtt.NewPublisher(cfg, coord)
		coord.OnUpdate = pub.PublishState
		go func() {
			if err := pub.Connect(); err != nil {
				logrus.Errorf("MQTT connect: %v", err)
			}
		}()
		defer pub.Close()
	} else {
		logrus.Info("MQTT disabled (no broker configured)")
	}

	// Optional HTTP API
	var httpSrv *http.Server
	if cfg.Web.ListenAddr != "" {
		router := web.NewRouter(coord, metrics.NewCollector(reg, coord), fetcher.Name())
		httpSrv = &http.Server{
			Addr:    cfg.Web.ListenAddr,
			Handler: handlers.LoggingHandler(os.Stdout, router),
		}
		go func() {
			logrus.Infof("HTTP API listening on %s", cfg.Web.ListenAddr)
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("http server: %v", err)
			}
		}()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, coord)
	if err := sched.RegisterAll(cfg.PollInterval()); err != nil {
		logrus.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// First refresh without waiting for the first poll tick
	go func() {
		if _, err := coord.Refresh(ctx, model.TriggerStartup); err != nil {
			logrus.Errorf("startup refresh: %v", err)
		}
	}()

	logrus.Info("TariffSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received, stopping...")
	cancel()
	if httpSrv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		cancelShutdown()
	}
	logrus.Info("TariffSentinel stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dinofightergenesis/dinofighterg/internal/api"
	"github.com/dinofightergenesis/dinofighterg/internal/identity"
	"github.com/dinofightergenesis/dinofighterg/internal/metrics"
	"github.com/dinofightergenesis/dinofighterg/internal/notifier"
	"github.com/dinofightergenesis/dinofighterg/internal/scheduler"
	"github.com/dinofightergenesis/dinofighterg/internal/session"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the economy service: ticks, HTTP API and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(commandContext(cmd))
		},
	}
}

func serveRun(parent context.Context) error {
	log.Infof("%s starting", programName)
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.WithError(err).Warn("set GOMAXPROCS")
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, cfg.Telegram.RatePerSecond)
	var obs session.Observer
	if tn.Enabled() {
		obs = notifier.NewAnnouncer(ctx, tn, cfg.Telegram.MaxRetries)
	} else {
		log.Info("telegram not configured, announcements disabled")
	}

	c, err := openCore(m, obs)
	if err != nil {
		return err
	}
	defer c.Close()

	sched := scheduler.NewScheduler(ctx, c.sessions)
	if err := sched.RegisterAll(cfg.Schedule.AccrualCron, cfg.Schedule.SaleCron); err != nil {
		return err
	}
	sched.RunNow()
	sched.Start()
	defer sched.Stop()

	st := c.sale.Status(c.sessions.Now())
	log.WithFields(log.Fields{"phase": st.Phase, "starts_at": st.StartsAt.Format(time.RFC3339)}).Info("token sale clock fixed")

	if tn.Enabled() && cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	var provider identity.Provider
	switch cfg.Auth.Mode {
	case "jwt":
		provider = identity.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	default:
		log.WithField("header", cfg.Auth.Header).Warn("trusting holder identity header from upstream")
		provider = identity.HeaderProvider{Header: cfg.Auth.Header}
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewRouter(api.Config{
			Sessions:      c.sessions,
			Identity:      provider,
			Gatherer:      reg,
			RatePerSecond: cfg.HTTP.RatePerSecond,
			Burst:         cfg.HTTP.Burst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Infof("%s is running. Press Ctrl+C to stop.", programName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case runErr = <-errCh:
		log.WithError(runErr).Error("http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	cancel()
	log.Infof("%s stopped", programName)
	return runErr
}

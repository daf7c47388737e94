package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dinofightergenesis/dinofighterg/internal/config"
	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/logging"
	"github.com/dinofightergenesis/dinofighterg/internal/metrics"
	"github.com/dinofightergenesis/dinofighterg/internal/recorder"
	"github.com/dinofightergenesis/dinofighterg/internal/session"
	"github.com/dinofightergenesis/dinofighterg/internal/store"
)

const programName = "dinofighter"

var (
	globalFlags = struct {
		debug  bool
		config string
	}{}
	cfg       *config.Config
	logCloser io.Closer
)

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Dino Fighter holder economy service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalFlags.config, "config", "", "path to config file (default $CONFIG_PATH or configs/config.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path := globalFlags.config
		if path == "" {
			path = "configs/config.yaml"
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				path = v
			}
		}
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if globalFlags.debug {
			c.Logging.Level = "debug"
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		closer, err := logging.Setup(c.Logging)
		if err != nil {
			return err
		}
		logCloser = closer
		cfg = c
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(globalCommand())
	rootCmd.AddCommand(tokenCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// core is the economy wiring shared by every command.
type core struct {
	store    store.Store
	recorder recorder.Recorder
	sessions *session.Manager
	sale     *economy.Sale
}

func openCore(m *metrics.Metrics, obs session.Observer) (*core, error) {
	params, err := cfg.EconomyParams()
	if err != nil {
		return nil, err
	}
	saleParams, err := cfg.SaleParams()
	if err != nil {
		return nil, err
	}

	if cfg.Store.Backend != "memory" {
		if err := ensureParent(cfg.Store.Path); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.WithFields(log.Fields{"backend": cfg.Store.Backend, "path": cfg.Store.Path}).Info("document store ready")

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if err := ensureParent(cfg.Database.SQLitePath); err != nil {
			st.Close()
			return nil, err
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	clock := economy.SystemClock{}
	sale := economy.NewSale(saleParams, clock)
	mgr := session.NewManager(session.Deps{
		Repo:     store.NewRepository(st, params.TierRates),
		Params:   params,
		Sale:     sale,
		Clock:    clock,
		Recorder: rec,
		Metrics:  m,
		Observer: obs,
		IdleTTL:  cfg.Sessions.IdleTTL,
	})
	return &core{store: st, recorder: rec, sessions: mgr, sale: sale}, nil
}

func (c *core) Close() {
	if err := c.recorder.Close(); err != nil {
		log.WithError(err).Warn("close recorder")
	}
	if err := c.store.Close(); err != nil {
		log.WithError(err).Warn("close store")
	}
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

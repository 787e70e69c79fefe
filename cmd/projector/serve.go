package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/refdata"
	"github.com/rpgo/policy-projector/internal/scheduler"
	"github.com/rpgo/policy-projector/internal/server"
	"github.com/spf13/cobra"
)

// service is the assembled server process, built separately from Run so it can be inspected.
type service struct {
	cfg       *config.AppConfig
	logger    calculation.Logger
	store     *refdata.Store
	server    *server.Server
	scheduler *scheduler.Scheduler
}

func newService(cfg *config.AppConfig) (*service, error) {
	logger := calculation.NewSlogLogger(slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	engine := calculation.NewEngine()
	engine.SetLogger(logger)

	loader := refdata.NewLoader(cfg.DataDir)
	loader.SetLogger(logger)
	logger.Infof("reference data directory %s", loader.Dir())
	store := refdata.NewStore(loader)
	srv := server.New(engine, store)
	loader.SetObserver(srv.ObserveLoad)

	sched := scheduler.New(store, logger)
	sched.OnRefresh = srv.ObserveRefresh
	if err := sched.Register(cfg.RefreshCron); err != nil {
		return nil, err
	}

	// The initial load goes through the scheduler so it is counted like any other refresh.
	// A failure leaves the store unready and /healthz reports 503 until a refresh succeeds.
	if err := sched.RunNow(); err != nil {
		logger.Warnf("starting without reference data: %v", err)
	}

	return &service{cfg: cfg, logger: logger, store: store, server: srv, scheduler: sched}, nil
}

func (s *service) run() error {
	s.scheduler.Start()
	defer s.scheduler.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.ListenAndServe(s.cfg.Addr) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case got := <-sig:
		s.logger.Infof("received %s, shutting down", got)
		return s.server.Shutdown()
	}
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var configPath, addr, refreshCron string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve projections and reference lookups over HTTP",
		Long: `Starts the HTTP API. Settings come from --config, then the PROJECTOR_* environment
variables, then these flags. Reference data is reloaded on the refresh schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAppConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = opts.dataDir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("refresh") {
				cfg.RefreshCron = refreshCron
			}

			svc, err := newService(cfg)
			if err != nil {
				return fmt.Errorf("start service: %w", err)
			}
			return svc.run()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "application config file (YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :8080")
	cmd.Flags().StringVar(&refreshCron, "refresh", "", "reference data refresh schedule; empty disables")
	return cmd
}

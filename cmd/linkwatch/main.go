// cmd/linkwatch/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/linkwatch/internal/command"
	"github.com/tamzrod/linkwatch/internal/config"
	"github.com/tamzrod/linkwatch/internal/ipc"
	"github.com/tamzrod/linkwatch/internal/logging"
	"github.com/tamzrod/linkwatch/internal/metrics"
	"github.com/tamzrod/linkwatch/internal/netmgr"
	"github.com/tamzrod/linkwatch/internal/probe"
	"github.com/tamzrod/linkwatch/internal/service"
	"github.com/tamzrod/linkwatch/internal/status"
	"github.com/tamzrod/linkwatch/internal/supervisor"
	"github.com/tamzrod/linkwatch/internal/writer"
)

type options struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linkwatch:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "linkwatch",
		Short: "Keep a device online over phone tethering",
		Long: `linkwatch probes internet reachability and, when it is lost, cycles through
saved tethering/Wi-Fi profiles. If no profile restores connectivity after
max_retry cycles it restarts the dependent service.

Run without a subcommand to start the supervisor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), o)
		},
	}
	bindConfigFlags(root.PersistentFlags(), o)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the connectivity supervisor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), o)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and print the effective result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	var socket string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running supervisor over its control socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			resp, err := ipc.SendCommand(ctx, socket, "status")
			if err != nil {
				return fmt.Errorf("supervisor not reachable on %s: %w", socket, err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp.Status)
		},
	}
	statusCmd.Flags().StringVar(&socket, "socket", ipc.DefaultSocketPath, "control socket path")

	root.AddCommand(runCmd, checkCmd, statusCmd)
	return root
}

func bindConfigFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML config file (optional)")
	fs.StringVar(&o.envFile, "env-file", ".env", "env file with LINKWATCH_* overrides (missing file is ignored)")
	fs.StringVar(&o.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// loadConfig resolves every source, CLI flags last, then validates and normalizes.
func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func runDaemon(parent context.Context, o *options) error {
	if parent == nil {
		parent = context.Background()
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Collaborators
	// --------------------

	runner := command.Exec{Timeout: cfg.CommandTimeout()}

	prober, err := probe.New(probe.Options{
		Method:  cfg.Probe.Method,
		Count:   cfg.Probe.Count,
		Timeout: cfg.Probe.Timeout(),
		Runner:  runner,
		Logger:  log.Named("probe"),
	})
	if err != nil {
		return err
	}
	nm, err := netmgr.New(runner, cfg.Network.StackService)
	if err != nil {
		return err
	}
	svc, err := service.New(runner)
	if err != nil {
		return err
	}

	// --------------------
	// Observers
	// --------------------

	board := status.NewBoard()
	observers := []supervisor.Observer{board}

	var m *metrics.Metrics
	if cfg.Metrics.Listen != "" {
		m = metrics.New()
		observers = append(observers, m)
	}

	sup, err := supervisor.New(supervisor.Config{
		CheckInterval:  cfg.CheckIntervalDuration(),
		MaxRetry:       cfg.MaxRetry,
		Markers:        cfg.ProfileMarkers,
		Targets:        cfg.ProbeTargets,
		Service:        cfg.DependentServiceName,
		RestartSettle:  cfg.Settle.Restart(),
		ActivateSettle: cfg.Settle.Activate(),
	}, supervisor.Deps{
		Prober:   prober,
		Profiles: nm,
		Services: svc,
		Logger:   log.Named("supervisor"),
		Observer: supervisor.Observers(observers...),
	})
	if err != nil {
		return err
	}

	pub, closeWriter, err := buildStatusPublisher(cfg.StatusMemory, board, log.Named("status_memory"))
	if err != nil {
		return err
	}
	defer closeWriter()

	// --------------------
	// Run
	// --------------------

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sup.Run(gctx) })

	if m != nil {
		srv := &metrics.Server{
			Listen:          cfg.Metrics.Listen,
			Metrics:         m,
			ShutdownTimeout: cfg.ShutdownTimeout(),
			Logger:          log.Named("metrics"),
		}
		g.Go(sideChannel(log, "metrics", func() error { return srv.Run(gctx) }))
	}

	if cfg.Control.Socket != "" {
		ctl := &ipc.Server{Path: cfg.Control.Socket, Source: board, Logger: log.Named("control")}
		g.Go(sideChannel(log, "control", func() error { return ctl.Run(gctx) }))
	}

	if pub != nil {
		g.Go(sideChannel(log, "status_memory", func() error { return pub.Run(gctx) }))
	}

	err = g.Wait()

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("linkwatch stopped", zap.Error(err))
	return err
}

// buildStatusPublisher returns a nil publisher and a no-op close when status memory is disabled.
func buildStatusPublisher(m config.StatusMemoryConfig, board *status.Board, log *zap.Logger) (*writer.Publisher, func() error, error) {
	if !m.Enabled() {
		return nil, func() error { return nil }, nil
	}
	sw, closeWriter, err := writer.BuildStatusWriter(m)
	if err != nil {
		return nil, nil, err
	}
	return &writer.Publisher{Source: board, Writer: sw, Logger: log}, closeWriter, nil
}

// sideChannel keeps an observation surface from taking the supervisor down with it.
func sideChannel(log *zap.Logger, name string, run func() error) func() error {
	return func() error {
		if err := run(); err != nil {
			log.Error("side channel stopped", zap.String("component", name), zap.Error(err))
		}
		return nil
	}
}

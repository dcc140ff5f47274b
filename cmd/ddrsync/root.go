package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ddrsync/internal/adapters/sources"
	"github.com/okian/ddrsync/internal/adapters/sources/primary"
	"github.com/okian/ddrsync/internal/adapters/sources/secondary"
	service "github.com/okian/ddrsync/internal/app"
	"github.com/okian/ddrsync/internal/config"
	"github.com/okian/ddrsync/internal/domain/model"
	"github.com/okian/ddrsync/pkg/logger"
)

// commandContext carries state shared by every subcommand.
type commandContext struct {
	configPath  string
	metricsFile string
	cfg         *config.Config
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "ddrsync",
		Short:         "Merge rhythm game scores from two trackers into one catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cc.ensureConfig(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return writeMetrics(cc.metricsFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.configPath, "config", "c", "", "Configuration file path (overrides DDRSYNC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cc.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on success")

	rootCmd.AddCommand(newSyncCommand(cc))
	rootCmd.AddCommand(newScoresCommand(cc))
	rootCmd.AddCommand(newSearchCommand(cc))

	return rootCmd
}

// ensureConfig loads configuration once and sets up logging from it.
func (cc *commandContext) ensureConfig(cmd *cobra.Command) error {
	if cc.cfg != nil {
		return nil
	}
	ctx := commandCtx(cmd)

	cfg, err := config.Load(ctx, config.WithFile(cc.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cc.cfg = cfg
	return nil
}

func (cc *commandContext) newPrimary() *primary.Client {
	cfg := cc.cfg
	return primary.New(
		primary.WithBaseURL(cfg.PrimaryBaseURL),
		primary.WithRateLimit(cfg.RequestsPerSecond),
		primary.WithUserAgent(cfg.UserAgent),
		primary.WithTimeout(cfg.RequestTimeout()),
	)
}

// newService wires both tracker clients into an update service.
func (cc *commandContext) newService() *service.Service {
	cfg := cc.cfg
	p := cc.newPrimary()
	s := secondary.New(
		secondary.WithBaseURL(cfg.SecondaryBaseURL),
		secondary.WithRateLimit(cfg.RequestsPerSecond),
		secondary.WithUserAgent(cfg.UserAgent),
		secondary.WithTimeout(cfg.RequestTimeout()),
	)
	return service.New(
		service.WithSources(sources.New(p, s)),
		service.WithWorkerCount(cfg.FetchWorkers),
		service.WithQueueSize(cfg.JobQueueSize),
		service.WithLogger(logger.Named("service")),
	)
}

// seeds converts roster entries to player seeds.
func seeds(players ...config.Player) []model.PlayerSeed {
	out := make([]model.PlayerSeed, 0, len(players))
	for _, p := range players {
		out = append(out, model.PlayerSeed{
			Name:             p.Name,
			PrimaryAccount:   p.PrimaryAccount,
			SecondaryAccount: p.SecondaryAccount,
		})
	}
	return out
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Package cli builds the breakreminder command tree.
//
//	breakreminder             start the reminder (same as run)
//	breakreminder run         start the reminder
//	breakreminder next        print upcoming alert times
//	breakreminder --version
//
// Environment variables configure run; flags override them.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"breakreminder/internal/application/service"
	"breakreminder/internal/domain/entity"
	"breakreminder/internal/domain/repository"
	"breakreminder/internal/domain/schedule"
	"breakreminder/internal/infrastructure/database/file"
	"breakreminder/internal/infrastructure/database/sqlite"
	"breakreminder/internal/pkg/config"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
)

const programName = "breakreminder"

// nowFunc is replaced in tests.
var nowFunc = time.Now

type options struct {
	driver    string
	store     string
	watch     bool
	httpAddr  string
	heartbeat string
	bells     int
	keyboard  bool
	logLevel  string
}

// BuildCLI returns the root command.
func BuildCLI(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Break reminder: alerts a configurable lead time before evenly spaced boundaries every hour",
		Long: `breakreminder rings an alert a few minutes before each break boundary.

Boundaries are spread evenly over the hour (1 to 4 per hour) and the alert
fires the configured lead time earlier (0, 5 or 10 minutes). Both settings
can be cycled at runtime from the keyboard or over HTTP and are persisted in
the settings store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts, version)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", config.DriverFile, "settings store driver: file or sqlite")
	flags.StringVar(&opts.store, "store", "", "settings store path (default BreakReminder.txt or breakreminder.db)")
	flags.BoolVar(&opts.watch, "watch", true, "reload settings when the store file changes (file driver)")
	flags.StringVar(&opts.httpAddr, "http", "", "listen address of the HTTP command surface, e.g. 127.0.0.1:8080")
	flags.StringVar(&opts.heartbeat, "heartbeat", "@every 30m", "cron spec of the status heartbeat log, empty disables it")
	flags.IntVar(&opts.bells, "bells", 1, "terminal bell characters per alert")
	flags.BoolVar(&opts.keyboard, "keyboard", true, "read single key commands from the terminal")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(buildRunCommand(opts, version))
	rootCmd.AddCommand(buildNextCommand(opts))
	return rootCmd
}

func buildRunCommand(opts *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the break reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts, version)
		},
	}
}

func buildNextCommand(opts *options) *cobra.Command {
	var (
		perHour int
		lead    int
		count   int
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the next alert times",
		Long:  "Print the next alert times from now. Without --per-hour or --lead the stored settings are used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("%w: --count must be at least 1", appErrors.ErrInvalidConfig)
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			settings := entity.DefaultConfiguration()
			if !cmd.Flags().Changed("per-hour") || !cmd.Flags().Changed("lead") {
				repo, closeStore, err := openStore(cfg, logger.Nop())
				if err != nil {
					return err
				}
				settings = service.NewSettingService(repo, logger.Nop()).Load(cmd.Context())
				closeStore()
			}
			if cmd.Flags().Changed("per-hour") {
				if perHour < 1 {
					return fmt.Errorf("%w: --per-hour must be at least 1", appErrors.ErrInvalidConfig)
				}
				settings.EventsPerHour = perHour
			}
			if cmd.Flags().Changed("lead") {
				if lead < 0 {
					return fmt.Errorf("%w: --lead must not be negative", appErrors.ErrInvalidConfig)
				}
				settings.LeadTimeMinutes = lead
			}
			return printUpcoming(cmd.OutOrStdout(), settings, nowFunc(), count)
		},
	}
	cmd.Flags().IntVar(&perHour, "per-hour", 0, "alerts per hour")
	cmd.Flags().IntVar(&lead, "lead", 0, "lead time in minutes")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of alert times to print")
	return cmd
}

func printUpcoming(w io.Writer, cfg entity.Configuration, now time.Time, count int) error {
	if _, err := fmt.Fprintf(w, "Schedule: %s\n", cfg); err != nil {
		return err
	}
	for _, at := range schedule.Upcoming(schedule.Breaks{Config: cfg}, now, count) {
		if _, err := fmt.Fprintf(w, "%s\n", at.Format("Mon 2006-01-02 3:04 PM")); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the environment, applies the flags the user set and
// validates the result.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.StoreDriver = opts.driver
	}
	if flags.Changed("store") {
		cfg.StorePath = opts.store
	}
	if flags.Changed("watch") {
		cfg.Watch = opts.watch
	}
	if flags.Changed("http") {
		cfg.HTTPAddr = opts.httpAddr
	}
	if flags.Changed("heartbeat") {
		cfg.Heartbeat = opts.heartbeat
	}
	if flags.Changed("bells") {
		cfg.Bells = opts.bells
	}
	if flags.Changed("keyboard") {
		cfg.Keyboard = opts.keyboard
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openStore opens the configured settings store. The returned func releases it.
func openStore(cfg config.Config, log logger.Logger) (repository.SettingRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.NewDB(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", appErrors.ErrStartup, err)
		}
		return sqlite.NewSettingRepository(db), func() { _ = sqlite.CloseDB(db) }, nil
	default:
		return file.NewSettingRepository(afero.NewOsFs(), cfg.StorePath, log), func() {}, nil
	}
}

func runCommand(cmd *cobra.Command, opts *options, version string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return run(ctx, cfg, version, defaultStreams())
}

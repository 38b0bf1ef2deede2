// Package main provides the CLI entrypoint for liftkit.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/liftkit/internal/config"
	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/store"
	"github.com/verte-zerg/liftkit/internal/timer"
	"github.com/verte-zerg/liftkit/internal/tui"
)

var (
	rootBar      float64
	rootChime    bool
	rootLogLevel string
	rootDBPath   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:           "liftkit",
		Short:         "Plate calculator and rest timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTUICmd,
	}

	rootCmd.PersistentFlags().Float64Var(&rootBar, "bar", defaults.Bar, "bar weight")
	rootCmd.PersistentFlags().BoolVar(&rootChime, "chime", defaults.Chime, "ring the terminal bell when a countdown completes")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "database path (default: XDG data dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newTimerCmd())

	return rootCmd
}

// loadSettings merges the config file under the command-line flags.
func loadSettings(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := model.DefaultConfig()
	cfg.Bar = rootBar
	cfg.Chime = rootChime
	cfg.LogLevel = rootLogLevel
	applyFloatConfig(cmd, "bar", &cfg.Bar, fileCfg.Plates.Bar)
	applyBoolConfig(cmd, "chime", &cfg.Chime, fileCfg.Timer.Chime)
	applyStringConfig(cmd, "log-level", &cfg.LogLevel, fileCfg.Log.Level)
	if fileCfg.Timer.Presets != nil {
		cfg.Presets = append([]int(nil), (*fileCfg.Timer.Presets)...)
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func dbPath() string {
	if rootDBPath != "" {
		return rootDBPath
	}
	return config.DefaultDBPath()
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closeLog := openLogFile(config.DefaultLogPath(), cfg.LogLevel)
	defer closeLog()

	var kv store.KV
	st, err := store.Open(dbPath())
	if err != nil {
		logger.Warn().Err(err).Msg("database unavailable; changes will not be saved")
		logErrf("failed to open db, running without persistence: %v\n", err)
		kv = store.NewMemory()
	} else {
		kv = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	ctx := cmd.Context()
	inventory := plates.NewInventoryStore(kv, logger)
	if err := inventory.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("using default plate inventory")
	}

	clock := clockwork.NewRealClock()
	notifier := tui.NewNotifier()
	engine := timer.NewEngine(timer.Options{
		Clock:    clock,
		Store:    kv,
		Notifier: notifier,
		Logger:   logger,
	})
	if err := engine.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("using default timer state")
	}

	m := tui.NewModel(tui.Options{
		Config:    cfg,
		Engine:    engine,
		Inventory: inventory,
		Notifier:  notifier,
		Clock:     clock,
		Bell:      os.Stdout,
		Logger:    logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	engine.Checkpoint(ctx)
	return nil
}

// openStore opens the database for a one-shot subcommand.
func openStore() (*store.Store, func(), error) {
	st, err := store.Open(dbPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	defaults := model.DefaultConfig()
	presets := make([]string, len(defaults.Presets))
	for i, p := range defaults.Presets {
		presets[i] = fmt.Sprintf("%d", p)
	}
	return fmt.Sprintf(`# liftkit configuration
# Uncomment a value to enable it. CLI flags override config values.

[plates]
# bar = %s                # Bar weight

[timer]
# presets = [%s]   # Countdown presets in seconds, bound to keys 1-9
# chime = %t              # Ring the terminal bell when a countdown completes

[log]
# level = %q            # debug, info, warn or error
`,
		plates.FormatWeight(defaults.Bar),
		strings.Join(presets, ", "),
		defaults.Chime,
		defaults.LogLevel,
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogger returns a human-readable logger for one-shot subcommands.
func setupLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(parseLevel(level)).With().Timestamp().Logger()
}

// openLogFile keeps TUI logs off the alt screen. A log file that cannot be
// opened silences logging for the session.
func openLogFile(path, level string) (zerolog.Logger, func()) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}
	}
	logger := zerolog.New(f).Level(parseLevel(level)).With().Timestamp().Logger()
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

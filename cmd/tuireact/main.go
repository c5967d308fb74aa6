// Package main provides the CLI entrypoint for tuireact.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/tuireact/internal/config"
	"github.com/verte-zerg/tuireact/internal/console"
	"github.com/verte-zerg/tuireact/internal/generator"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/session"
	"github.com/verte-zerg/tuireact/internal/stats"
	"github.com/verte-zerg/tuireact/internal/tui"
)

const defaultUI = model.UIPlain

const exitInterrupted = 130

// shutdownSignals end a session the same way Ctrl-C does.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

var (
	sessionUI      string
	sessionSeed    int64
	sessionLogFile string
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	os.Exit(exitCode(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuireact",
		Short:         "Keyboard reaction time calibration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSessionCmd,
	}

	rootCmd.Flags().StringVar(&sessionUI, "ui", defaultUI, "interface: plain or tui")
	rootCmd.Flags().Int64Var(&sessionSeed, "seed", 0, "random seed for letter order and delays (0: time-based)")
	rootCmd.Flags().StringVar(&sessionLogFile, "log-file", "", "write debug logs to this file")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// exitCode prints the outcome of a run and maps it to a process exit code.
func exitCode(stdout, stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrInterrupted):
		if _, werr := fmt.Fprintf(stdout, "\n%s\n", session.ExitNotice); werr != nil {
			// Best-effort exit notice.
			_ = werr
		}
		return exitInterrupted
	default:
		if _, werr := fmt.Fprintf(stderr, "Error: %v\n", err); werr != nil {
			// Best-effort logging to stderr.
			_ = werr
		}
		return 1
	}
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts := resolveOptions(cmd, fileCfg)
	if err := validateOptions(opts); err != nil {
		return err
	}

	logger, err := newLogger(opts.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	gen := generator.New()
	if opts.Seed != 0 {
		gen = generator.NewSeeded(opts.Seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	logger.Info("starting session", zap.String("ui", opts.UI), zap.Int64("seed", opts.Seed))
	switch opts.UI {
	case model.UITUI:
		return runTUI(ctx, cmd.OutOrStdout(), gen, logger)
	default:
		return runPlain(ctx, gen, logger)
	}
}

func resolveOptions(cmd *cobra.Command, fileCfg config.FileConfig) model.Options {
	applyStringConfig(cmd, "ui", &sessionUI, fileCfg.Session.UI)
	applyInt64Config(cmd, "seed", &sessionSeed, fileCfg.Session.Seed)
	applyStringConfig(cmd, "log-file", &sessionLogFile, fileCfg.Session.LogFile)
	return model.Options{
		UI:      strings.ToLower(strings.TrimSpace(sessionUI)),
		Seed:    sessionSeed,
		LogFile: sessionLogFile,
	}
}

func runPlain(ctx context.Context, gen *generator.Generator, logger *zap.Logger) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	con, err := console.Open(os.Stdin, os.Stdout, console.WithLogger(logger), console.WithInterrupt(cancel))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := con.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	runner := session.NewRunner(con, con.Out(), gen, session.WithLogger(logger))
	_, err = runner.Run(ctx)
	return err
}

func runTUI(ctx context.Context, out io.Writer, gen *generator.Generator, logger *zap.Logger) error {
	m := tui.NewModel(gen, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if ctx.Err() != nil || m.Interrupted() {
		return session.ErrInterrupted
	}
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	result, ok := final.(*tui.Model)
	if !ok || !result.Finished() {
		return nil
	}
	if err := stats.RenderSummary(out, result.Results()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
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
	if err := ensureConfigFile(path); err != nil {
		return err
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

// ensureConfigFile writes the commented template unless a config exists.
func ensureConfigFile(path string) error {
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
	return nil
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuireact configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# ui = %q            # Interface: "plain" or "tui"
# seed = 0                # Random seed for letter order and delays (0: time-based)
# log-file = %q           # Debug log file
`,
		defaultUI,
		config.DefaultLogPath(),
	)
}

func validateOptions(opts model.Options) error {
	switch opts.UI {
	case model.UIPlain, model.UITUI:
	default:
		return fmt.Errorf("--ui must be %q or %q", model.UIPlain, model.UITUI)
	}
	return nil
}

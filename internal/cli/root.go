// Package cli implements the claude-conv-manager CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/config"
	"github.com/psaban20/claude-conversation-manager/internal/engine"
	"github.com/psaban20/claude-conversation-manager/internal/ledger"
	"github.com/psaban20/claude-conversation-manager/internal/project"
	"github.com/psaban20/claude-conversation-manager/internal/store"
)

var (
	configPath  string
	projectsDir string
	logLevel    string
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "claude-conv-manager",
	Short:         "Inspect and rename Claude Code conversations",
	Long:          "Finds every branch of a Claude Code conversation file, reports which ones lack a title, and titles them all at once.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CCM_CONFIG or ~/.claude-conv-manager/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&projectsDir, "projects-dir", "", "Projects directory (default: $CCM_PROJECTS_DIR or ~/.claude/projects)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// Execute runs RootCmd and prints any error to stderr.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintf(RootCmd.ErrOrStderr(), "error: %v\n", err)
	}
	return err
}

// app is the wiring shared by every command.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	engine *engine.Engine
	dir    project.Dir
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Resolve(configPath, os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg = config.Merge(cfg, config.Config{ProjectsDir: projectsDir, LogLevel: logLevel})

	if formatFlag != "json" && formatFlag != "text" {
		return nil, fmt.Errorf("invalid format %q (valid: json, text)", formatFlag)
	}

	log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		log:    log,
		engine: engine.New(store.NewFileStore(), engine.WithPolicy(cfg.Policy()), engine.WithLogger(log)),
		dir:    project.OSDir{},
	}, nil
}

// manager opens the ledger and returns a Manager journaling to it. The
// caller closes the ledger.
func (a *app) manager() (*project.Manager, *ledger.SQLiteLedger, error) {
	l, err := ledger.Open(a.cfg.LedgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	return project.NewManager(a.dir, l, a.cfg.ProjectsDir, a.cfg.ArchiveDir, a.log), l, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})), nil
}

func jsonOutput() bool { return formatFlag == "json" }

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

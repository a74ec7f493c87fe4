package main

import (
	"fmt"
	"os"

	"github.com/nconklindev/bomdiff/internal/config"
	"github.com/nconklindev/bomdiff/internal/logging"
	"github.com/nconklindev/bomdiff/internal/session"
	"github.com/nconklindev/bomdiff/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bomdiff",
		Short: "Compare two BOM spreadsheets and export the rows that changed",
		Long: `bomdiff aligns two bill-of-materials worksheets by a key column,
keeps only the rows whose selected fields differ and exports them to xlsx.

Run without a subcommand for the interactive picker, or use "bomdiff diff" in scripts.`,
		Version:      fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runTUI,
	}
	root.SetVersionTemplate("bomdiff {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: json, console")
	pf.String("log-file", "", "write logs to this file (the TUI logs nowhere without it)")
	pf.StringP("out", "o", "", "path of the exported workbook")
	pf.Int("header-window", 0, "number of leading rows scanned for the header (max 50)")
	pf.String("left-label", "", "header prefix of Left comparison columns")
	pf.String("right-label", "", "header prefix of Right comparison columns")

	root.AddCommand(newDiffCmd())
	return root
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.ForTUI(logOptions(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s := session.New(logger, sessionOptions(cfg))
	p := tea.NewProgram(ui.NewModel(s, cfg.OutputPath), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// loadConfig reads the environment and applies any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"log-level":   &cfg.LogLevel,
		"log-format":  &cfg.LogFormat,
		"log-file":    &cfg.LogFile,
		"out":         &cfg.OutputPath,
		"left-label":  &cfg.LeftLabel,
		"right-label": &cfg.RightLabel,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("header-window") {
		cfg.HeaderWindow, _ = flags.GetInt("header-window")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func logOptions(cfg *config.Config) logging.Options {
	return logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		HeaderWindow: cfg.HeaderWindow,
		LeftLabel:    cfg.LeftLabel,
		RightLabel:   cfg.RightLabel,
	}
}

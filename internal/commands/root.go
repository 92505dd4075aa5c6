package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intesasp/xlsx2ofx/internal/buildinfo"
	"github.com/intesasp/xlsx2ofx/internal/classify"
	"github.com/intesasp/xlsx2ofx/internal/config"
	"github.com/intesasp/xlsx2ofx/internal/importer"
	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/misslog"
	"github.com/intesasp/xlsx2ofx/internal/model"
)

// ExitUnrecognized is the exit status for a workbook in no known layout
// (EX_IOERR).
const ExitUnrecognized = 74

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	if errors.Is(err, layout.ErrUnrecognized) {
		return ExitUnrecognized
	}
	return 1
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	config.KeyBankID:   "bank-id",
	config.KeyFormat:   "format",
	config.KeyLogLevel: "log-level",
	config.KeyTables:   "tables",
	config.KeyMissLog:  "miss-log",
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *log.Logger
	runID      string
	strict     bool
	now        func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper(), now: time.Now}

	rootCmd := &cobra.Command{
		Use:     "intesasp",
		Short:   "Convert Intesa Sanpaolo spreadsheet exports to OFX",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("tables", "", "YAML file extending the classification tables")
	pf.String("miss-log", "", "CSV file unmapped descriptions and categories are appended to")

	rootCmd.AddCommand(
		newConvertCommand(a),
		newBatchCommand(a),
		newInspectCommand(a),
		newMissesCommand(a),
		newConfigCommand(),
	)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	path := a.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}
	cfg, err := config.Read(a.v, path)
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.cfg = cfg
	a.runID = uuid.NewString()
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Prefix:          "intesasp",
		Level:           level,
	})
	a.logger.Debug("config loaded", "file", path, "bank_id", cfg.BankID, "format", cfg.Format, "run", a.runID)
	return nil
}

// importOptions builds extraction options from the loaded config. A non-empty
// layoutName forces that layout.
func (a *app) importOptions(layoutName string) (importer.Options, error) {
	tables, err := classify.LoadTables(a.cfg.Tables)
	if err != nil {
		return importer.Options{}, err
	}
	opts := importer.Options{
		BankID: a.cfg.BankID,
		Tables: tables,
		Logger: a.logger,
	}
	if layoutName != "" {
		reg := layout.DefaultRegistry()
		l := reg.Get(layoutName)
		if l == nil {
			return importer.Options{}, fmt.Errorf("unknown layout %q (want one of %s)", layoutName, strings.Join(reg.Names(), ", "))
		}
		opts.Layout = l
	}
	return opts, nil
}

// recordMisses appends the misses of one conversion to the configured log.
func (a *app) recordMisses(source string, misses []model.Miss) error {
	if a.cfg.MissLog == "" || len(misses) == 0 {
		return nil
	}
	entries := misslog.FromMisses(a.now(), a.runID, source, misses)
	if err := misslog.Append(a.cfg.MissLog, entries); err != nil {
		return err
	}
	a.logger.Info("unmapped texts recorded", "count", len(entries), "log", a.cfg.MissLog)
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mixin-ap/internal/config"
	"mixin-ap/internal/logging"
)

// errDiagnostics is returned when a pass reported errors. They have already
// been printed.
var errDiagnostics = errors.New("processing reported errors")

type app struct {
	envFiles    []string
	logLevel    string
	logDir      string
	store       string
	storeDir    string
	metricsFile string
	session     string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mixin-ap",
		Short: "Resolve mixin targets and generate obfuscation mappings",
		Long: `mixin-ap reads mixin declarations from Java sources or YAML manifests,
resolves their targets, validates them and writes SRG mappings and refmaps
for the obfuscation environments named in the options.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logDir, "log-dir", "", "directory for JSON log files")
	pf.StringVar(&a.store, "store", "", "target store: file, badger or memory")
	pf.StringVar(&a.storeDir, "store-dir", "", "target store directory")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	pf.StringVar(&a.session, "session", "", "target session identifier")

	root.AddCommand(a.processCmd(), a.targetsCmd(), a.launchCmd())

	return root
}

// setup loads the configuration and lets explicitly set flags override it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}

	override("log-level", &cfg.LogLevel, a.logLevel)
	override("log-dir", &cfg.LogDir, a.logDir)
	override("store", &cfg.Store, a.store)
	override("store-dir", &cfg.StoreDir, a.storeDir)
	override("metrics-file", &cfg.MetricsFile, a.metricsFile)
	override("session", &cfg.Session, a.session)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())

	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logger == nil {
		return nil
	}

	return a.logger.Close()
}

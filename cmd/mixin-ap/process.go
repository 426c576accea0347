package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/analyze/javasrc"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/manifest"
	"mixin-ap/internal/metrics"
	"mixin-ap/internal/processor"
	"mixin-ap/internal/targets"
	"mixin-ap/internal/watch"
)

type processFlags struct {
	manifests     []string
	sources       []string
	options       []string
	watch         bool
	suppressNotes bool
	dumpManifest  string
}

func (a *app) processCmd() *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run a processing pass and write the mappings",
		Long: `Loads the declarations, registers every mixin and its annotated members,
runs the validators and writes the files named by the reobfSrgFile,
outSrgFile and outRefMapFile options. Exits non-zero when errors were
reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runProcess(cmd, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.manifests, "manifest", nil, "YAML declaration manifests")
	flags.StringSliceVar(&f.sources, "src", nil, "Java source files or directories")
	flags.StringArrayVarP(&f.options, "option", "A", nil, "processor option as key=value (repeatable)")
	flags.BoolVar(&f.watch, "watch", false, "re-run when the inputs change")
	flags.BoolVar(&f.suppressNotes, "suppress-notes", false, "do not print notes")
	flags.StringVar(&f.dumpManifest, "dump-manifest", "", "write the loaded declarations as a YAML manifest")
	cmd.MarkFlagsOneRequired("manifest", "src")

	return cmd
}

func (a *app) runProcess(cmd *cobra.Command, f *processFlags) error {
	if err := a.cfg.SetOptions(f.options); err != nil {
		return err
	}

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	store, closer, err := a.cfg.OpenStore(a.logger.Slog())
	if err != nil {
		return err
	}
	defer closer.Close()

	props := targets.NewProperties()
	if a.cfg.Session != "" {
		props.Set(targets.PropertySessionID, a.cfg.Session)
	}

	r := &runner{
		app:      a,
		flags:    f,
		out:      cmd.OutOrStdout(),
		store:    store,
		props:    props,
		metrics:  metrics.New(),
		registry: processor.NewRegistry(),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failed, err := r.run(ctx)
	if err != nil {
		return err
	}

	if !f.watch {
		if failed {
			return errDiagnostics
		}

		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := watch.DefaultOptions()
	opts.Debounce = a.cfg.Debounce
	opts.Logger = a.logger.Slog()

	w, err := watch.New(append(append([]string(nil), f.manifests...), f.sources...), func(ctx context.Context, paths []string) {
		a.logger.Info("inputs changed", "paths", len(paths))

		if _, err := r.run(ctx); err != nil {
			a.logger.Error("pass failed", "error", err)
		}
	}, &opts)
	if err != nil {
		return err
	}

	a.logger.Info("watching for changes", "session", props.Get(targets.PropertySessionID))

	return w.Run(ctx)
}

// runner performs one complete invocation per call. Runs share the target
// store, the session and the metrics.
type runner struct {
	app   *app
	flags *processFlags
	out   io.Writer

	store    targets.Store
	props    *targets.Properties
	metrics  *metrics.Metrics
	registry *processor.Registry

	mu   sync.Mutex
	runs int
}

// run reports whether the pass produced errors.
func (r *runner) run(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs++
	key := processor.InvocationKey(fmt.Sprintf("run-%d", r.runs))

	idx, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	diags := &diagnostic.Diagnostics{}

	env, err := r.registry.Environment(ctx, key, processor.Config{
		Options:       r.app.cfg.Options,
		SourceRoots:   r.roots(),
		Index:         idx,
		Messager:      diags,
		Store:         r.store,
		Properties:    r.props,
		Metrics:       r.metrics,
		Logger:        r.app.logger.Slog(),
		SuppressNotes: r.flags.suppressNotes,
	})
	if err != nil {
		return false, err
	}
	defer r.registry.Dispose(key)

	if err := env.RunPass(ctx, idx); err != nil {
		return false, err
	}

	env.WriteMappings(ctx)

	for _, d := range diags.All() {
		fmt.Fprintf(r.out, "%s: %s\n", d.Severity, d)
	}

	r.app.logger.Info("pass complete",
		"session", env.Session(),
		"mixins", len(env.Declarations()),
		"errors", len(diags.Errors),
		"warnings", len(diags.Warnings))

	if r.flags.dumpManifest != "" {
		if err := manifest.WriteFile(manifest.FromIndex(idx), r.flags.dumpManifest); err != nil {
			return false, err
		}
	}

	if path := r.app.cfg.MetricsFile; path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			return false, err
		}
	}

	return diags.HasErrors(), nil
}

// load builds the round's index from every configured front end.
func (r *runner) load(ctx context.Context) (*analyze.Index, error) {
	idx := analyze.NewIndex()

	if len(r.flags.manifests) > 0 {
		m, err := manifest.Load(r.flags.manifests...)
		if err != nil {
			return nil, err
		}

		if err := idx.Merge(m); err != nil {
			return nil, err
		}
	}

	if len(r.flags.sources) > 0 {
		s, err := javasrc.Load(ctx, r.flags.sources...)
		if err != nil {
			return nil, err
		}

		if err := idx.Merge(s); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// roots are the directories searched for mixin.properties.
func (r *runner) roots() []string {
	var out []string

	for _, p := range append(append([]string(nil), r.flags.sources...), r.flags.manifests...) {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, p)
		} else {
			out = append(out, filepath.Dir(p))
		}
	}

	return out
}

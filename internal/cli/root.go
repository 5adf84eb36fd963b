// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/config"
	"github.com/Evn42/routine-builder/internal/logging"
)

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// rootOptions are the persistent flags and the state built from them.
type rootOptions struct {
	configPath string
	verbose    bool
	ephemeral  bool

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error

	// openApp is replaced in tests.
	openApp func(cfg *config.Config, log *zap.Logger, opts AppOptions) (*App, error)
	app     *App
}

// App builds the App on first use.
func (o *rootOptions) App() (*App, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := o.openApp(o.cfg, o.log, AppOptions{Ephemeral: o.ephemeral})
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

// NewRootCommand builds the full command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	return newRootCommand(&rootOptions{openApp: OpenApp}, info)
}

func newRootCommand(o *rootOptions, info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "routine",
		Short: "Build a personalized beauty routine from the products you pick",
		Long: `routine lets you browse a product catalog by category, collect the
products you use, and ask an assistant to turn them into a routine.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), o)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "config file (default ~/.routine/config.toml)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&o.ephemeral, "ephemeral", false, "keep the selection in memory only")

	root.AddCommand(
		newCategoriesCommand(o),
		newProductsCommand(o),
		newToggleCommand(o),
		newSelectedCommand(o),
		newRemoveCommand(o),
		newClearCommand(o),
		newGenerateCommand(o),
		newChatCommand(o),
		newConfigCommand(o),
		newVersionCommand(info),
	)
	return root
}

func (o *rootOptions) setup() error {
	var err error
	if o.configPath != "" {
		o.cfg, err = config.LoadFromPath(o.configPath)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := o.cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	o.log, o.closeLog, err = logging.New(logging.Options{Path: o.cfg.Logging.Path, Level: level})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.log.Debug("config loaded", zap.String("catalog", o.cfg.Catalog.Source), zap.String("driver", o.cfg.Storage.Driver))
	return nil
}

func (o *rootOptions) teardown() {
	if o.app != nil {
		if err := o.app.Close(); err != nil {
			o.log.Warn("storage close failed", zap.Error(err))
		}
		o.app = nil
	}
	if o.closeLog != nil {
		_ = o.closeLog()
		o.closeLog = nil
	}
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute(info BuildInfo) int {
	o := &rootOptions{openApp: OpenApp}
	defer o.teardown()
	return execute(context.Background(), newRootCommand(o, info), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

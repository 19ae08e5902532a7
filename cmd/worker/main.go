package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pnt-cleaner/app/config"
	"github.com/pnt-cleaner/helpers/utils"
	"github.com/pnt-cleaner/internal/bootstrap"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli state shared by every subcommand
type cli struct {
	fs           afero.Fs
	configPath   string
	logLevel     string
	resourcesDir string

	cfg    *config.Config
	logger *zap.Logger
	deps   *bootstrap.Deps
}

func rootCmd(fs afero.Fs) *cobra.Command {
	c := &cli{fs: fs}
	root := &cobra.Command{
		Use:           "pnt-worker",
		Short:         "Batch cleaning of PNT procurement tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "configuration file (default config/app.yaml)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	flags.StringVar(&c.resourcesDir, "resources-dir", "", "directory of reference lists and catalogs")

	root.AddCommand(
		c.cleanCmd(),
		c.analyzeCmd(),
		c.rulesCmd(),
		c.seedCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.fs, c.configPath)
	if err != nil {
		return err
	}
	if c.resourcesDir != "" {
		cfg.Resources.Dir = c.resourcesDir
	}

	logger, err := utils.NewLogger(cfg.App.Env, c.logLevel)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	c.deps = bootstrap.New(cfg, c.fs, logger)
	return nil
}

func (c *cli) teardown(ctx context.Context) error {
	if c.deps == nil {
		return nil
	}
	defer c.logger.Sync()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.deps.Close(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

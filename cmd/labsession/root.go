package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/config"
	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/o11y"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
	logsDir    string
	statePath  string
	debug      bool

	// repoURL overrides the configured source repository; bound as a local
	// flag on the commands that build.
	repoURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "labsession",
		Short:        "Build a Java application, provision a cloud host and deploy onto it",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "labsession.yaml", "pipeline configuration file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "env file supplying credentials")
	pf.StringVar(&opts.logsDir, "logs-dir", "", "directory for per-run JSON logs, in addition to console output")
	pf.StringVar(&opts.statePath, "state", filepath.Join(".labsession", "state.json"), "run state shared between single-stage commands")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newBuildCmd(opts),
		newProvisionCmd(opts),
		newDeployCmd(opts),
		newTeardownCmd(opts),
	)

	return cmd
}

// load resolves the configuration file and environment secrets, applying any
// command-line overrides.
func (o *rootOptions) load() (*config.Config, *config.Secrets, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	secrets, err := config.LoadSecrets(o.envFile)
	if err != nil {
		return nil, nil, err
	}

	if o.repoURL != "" {
		cfg.RepoURL = o.repoURL
	}
	if o.logsDir == "" {
		o.logsDir = cfg.LogsDir
	}

	return cfg, secrets, nil
}

// setup initializes logging and tracing for one invocation. The returned
// closer flushes the run log file.
func (o *rootOptions) setup(ctx context.Context, runID string) (context.Context, func(), error) {
	ctx, closer, err := log.Setup(ctx, runID, o.logsDir, o.debug)
	if err != nil {
		return ctx, nil, err
	}

	if err := o11y.SetupTracing(ctx); err != nil {
		log.Warn(ctx, "tracing disabled", "error", err)
	}

	return ctx, closer, nil
}

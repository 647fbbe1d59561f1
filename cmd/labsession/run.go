package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/pipeline"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the full build, provision and deploy cycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, secrets, err := opts.load()
			if err != nil {
				return err
			}
			if err := requireHostKeys(secrets); err != nil {
				return err
			}

			pctx := pipeline.NewContext()
			ctx, closer, err := opts.setup(cmd.Context(), pctx.RunID)
			if err != nil {
				return err
			}
			defer closer()

			store, err := newStore(cfg, secrets)
			if err != nil {
				return err
			}
			driver, err := newDriver(ctx, cfg, secrets)
			if err != nil {
				return err
			}

			p := pipeline.New(
				&pipeline.BuildStage{Builder: newBuilder(cfg), Store: store},
				&pipeline.ProvisionStage{Driver: driver},
				&pipeline.DeployStage{Deployer: newDeployer(cfg), Store: store},
			)

			result, runErr := p.Run(ctx, pctx)

			// The state survives even a failed run, so teardown and retried
			// stages can pick up what was created.
			if err := pipeline.SaveContext(opts.statePath, pctx); err != nil {
				log.Warn(ctx, "could not save run state", "error", err)
			}

			for _, s := range result.Stages {
				log.Info(ctx, "stage result", "stage", s.Name, "status", s.Status)
			}
			if runErr != nil {
				return runErr
			}

			log.Info(ctx, "application deployed",
				"url", fmt.Sprintf("http://%s:%d", pctx.Host.Address(), cfg.Provision.AppPort))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.repoURL, "repo-url", "", "source repository to build, overriding the configured one")

	return cmd
}

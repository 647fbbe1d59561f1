package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/pipeline"
)

func newDeployCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Run only the deploy stage against the previously provisioned host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, secrets, err := opts.load()
			if err != nil {
				return err
			}

			pctx, err := pipeline.LoadContext(opts.statePath)
			if err != nil {
				return err
			}

			ctx, closer, err := opts.setup(cmd.Context(), pctx.RunID)
			if err != nil {
				return err
			}
			defer closer()

			store, err := newStore(cfg, secrets)
			if err != nil {
				return err
			}

			stage := &pipeline.DeployStage{Deployer: newDeployer(cfg), Store: store}
			if err := stage.Run(ctx, pctx); err != nil {
				return err
			}

			log.Info(ctx, "application deployed",
				"url", fmt.Sprintf("http://%s:%d", pctx.Host.Address(), cfg.Provision.AppPort))
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/pipeline"
)

func newProvisionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Run only the provision stage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, secrets, err := opts.load()
			if err != nil {
				return err
			}
			if err := requireHostKeys(secrets); err != nil {
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

			driver, err := newDriver(ctx, cfg, secrets)
			if err != nil {
				return err
			}

			stage := &pipeline.ProvisionStage{Driver: driver}
			if err := stage.Run(ctx, pctx); err != nil {
				return err
			}

			if err := pipeline.SaveContext(opts.statePath, pctx); err != nil {
				return err
			}

			log.Info(ctx, "host provisioned", "address", pctx.Host.Address())
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/pipeline"
)

func newTeardownCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "teardown",
		Short: "Destroy the provisioned infrastructure",
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

			driver, err := newDriver(ctx, cfg, secrets)
			if err != nil {
				return err
			}

			if err := driver.Teardown(ctx); err != nil {
				return err
			}

			pctx.Host = nil
			if err := pipeline.SaveContext(opts.statePath, pctx); err != nil {
				log.Warn(ctx, "could not update run state", "error", err)
			}

			log.Info(ctx, "infrastructure destroyed")
			return nil
		},
	}
}

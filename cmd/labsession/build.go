package main

import (
	"github.com/spf13/cobra"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/pipeline"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run only the build stage and publish the artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, secrets, err := opts.load()
			if err != nil {
				return err
			}

			// A build starts a new cycle; any previous run state is replaced.
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

			stage := &pipeline.BuildStage{Builder: newBuilder(cfg), Store: store}
			if err := stage.Run(ctx, pctx); err != nil {
				return err
			}

			if err := pipeline.SaveContext(opts.statePath, pctx); err != nil {
				return err
			}

			log.Info(ctx, "artifact published",
				"name", pctx.Artifact.Name, "key", pctx.Artifact.Key, "digest", pctx.Artifact.Digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.repoURL, "repo-url", "", "source repository to build, overriding the configured one")

	return cmd
}

// Package pipeline coordinates the build, provision and deploy stages.
// Execution is strictly sequential: each stage is gated on the success of
// every stage before it, the first failure aborts the run, and nothing is
// rolled back.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/o11y"
)

// Stage is one sequential step of a run. Stages communicate exclusively
// through the typed Context; there are no environment-variable side channels.
type Stage interface {
	Name() string
	Run(ctx context.Context, pctx *Context) error
}

type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes all stages in order against a shared Context. The returned
// RunResult always covers every stage; stages after a failure are marked
// skipped. The first stage error is returned, wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context, pctx *Context) (*RunResult, error) {
	result := &RunResult{RunID: pctx.RunID}
	tracer := otel.Tracer(o11y.TracerName)

	var failed error
	for _, stage := range p.stages {
		if failed != nil {
			result.record(stage.Name(), StatusSkipped, nil)
			continue
		}

		stageCtx := log.With(ctx, o11y.AttrStage, stage.Name())
		stageCtx, span := tracer.Start(stageCtx, stage.Name())
		span.SetAttributes(attribute.String(o11y.AttrRunID, pctx.RunID))

		log.Info(stageCtx, "stage starting")
		err := stage.Run(stageCtx, pctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()

			log.Error(stageCtx, "stage failed", "error", err)
			failed = fmt.Errorf("stage %q: %w", stage.Name(), err)
			result.record(stage.Name(), StatusFailed, err)
			continue
		}

		span.End()
		log.Info(stageCtx, "stage succeeded")
		result.record(stage.Name(), StatusSucceeded, nil)
	}

	return result, failed
}

package analysis

import (
	"context"
	"time"

	"hermes/internal/metrics"
	"hermes/pkg/logger"
)

// Stage is one step of the analysis pipeline. Stages run strictly in order;
// each may read the results earlier stages left on the Context.
type Stage interface {
	Name() string
	Run(ctx context.Context, ac *Context) error
}

// Pipeline executes the analysis stages sequentially. A failing stage is
// logged and recorded on the Context but never aborts the run, so results
// computed by earlier stages survive.
type Pipeline struct {
	stages []Stage
	log    *logger.Logger
}

// NewPipeline creates a pipeline over the given stages
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
		log:    logger.Get().With("component", "pipeline"),
	}
}

// Run executes every stage in order against the accumulating context
func (p *Pipeline) Run(ctx context.Context, ac *Context) *Context {
	log := p.log.With("run_id", ac.RunID, "currency", ac.Currency, "days", ac.Days)
	log.Infow("analysis run started", "stages", len(p.stages))

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			log.Warnw("analysis run canceled", "stage", stage.Name())
			ac.Failed(stage.Name(), err)
			return ac
		}

		started := time.Now()
		err := stage.Run(ctx, ac)
		metrics.RecordStage(stage.Name(), time.Since(started), err)

		if err != nil {
			log.Errorw("stage failed", "stage", stage.Name(), "error", err)
			ac.Failed(stage.Name(), err)
			ac.Say("Stage " + stage.Name() + " failed, continuing with partial results.")
			continue
		}
		log.Debugw("stage completed", "stage", stage.Name(), "duration", time.Since(started))
	}

	log.Infow("analysis run finished", "failures", len(ac.Failures),
		"duration", time.Since(ac.StartedAt))
	return ac
}

package cli

import (
	"context"

	"golang-stock-news-analyzer/internal/analyzer/service"
)

// Handler runs a single interactive pipeline execution.
type Handler struct {
	pipeline  service.PipelineService
	presenter *Presenter
}

func NewHandler(pipeline service.PipelineService, presenter *Presenter) *Handler {
	return &Handler{
		pipeline:  pipeline,
		presenter: presenter,
	}
}

// Run executes the pipeline for company and prints the outcome. Only an ERROR
// outcome is returned as an error.
func (h *Handler) Run(ctx context.Context, company string) error {
	run, err := h.pipeline.Run(ctx, company)
	h.presenter.Outcome(run, err)
	return err
}

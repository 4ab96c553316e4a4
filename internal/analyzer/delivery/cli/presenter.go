package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang-stock-news-analyzer/internal/entity"

	"github.com/charmbracelet/lipgloss"
)

var (
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Presenter prints pipeline progress and outcome for a human at the terminal.
type Presenter struct {
	out io.Writer
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) StageStarted(_ context.Context, stage entity.PipelineStage) {
	switch stage {
	case entity.StageTickerExtraction:
		p.println(stepStyle.Render("Step 1: Getting ticker symbol..."))
	case entity.StageNewsFetching:
		p.println("")
		p.println(stepStyle.Render("Step 2: Getting news..."))
	case entity.StageSentimentAnalysis:
		p.println("")
		p.println(stepStyle.Render("Step 3: Analyzing news..."))
	}
}

func (p *Presenter) TickerResolved(_ context.Context, company, ticker string) {
	p.println(infoStyle.Render(fmt.Sprintf("%s: %s", company, ticker)))
}

func (p *Presenter) NewsFetched(_ context.Context, count int) {
	p.println(infoStyle.Render(fmt.Sprintf("Found %d news articles", count)))
}

// Outcome prints the final analysis or failure message, followed by the total time.
func (p *Presenter) Outcome(run *entity.PipelineRun, err error) {
	if run == nil {
		if err != nil {
			p.println(errorStyle.Render(fmt.Sprintf("Pipeline error: %v", err)))
		}
		return
	}

	switch {
	case err != nil:
		p.println(errorStyle.Render(fmt.Sprintf("Pipeline error: %v", err)))
	case run.Status == entity.PipelineStatusSuccess:
		p.printAnalysis(run)
	case run.Status == entity.PipelineStatusFailed:
		p.println(failureStyle.Render(failureMessage(run)))
	}

	p.println("")
	p.println(mutedStyle.Render(fmt.Sprintf("Pipeline completed. Total time: %.2f seconds", run.Elapsed().Seconds())))
}

func (p *Presenter) printAnalysis(run *entity.PipelineRun) {
	data, err := json.MarshalIndent(run.Analysis, "", "  ")
	if err != nil {
		p.println(errorStyle.Render(fmt.Sprintf("Failed to encode analysis: %v", err)))
		return
	}
	p.println("")
	p.println(resultStyle.Render("Analysis Results:"))
	p.println(strings.Repeat("=", 60))
	p.println(string(data))
}

func failureMessage(run *entity.PipelineRun) string {
	switch run.FailureStage {
	case entity.StageTickerExtraction:
		return fmt.Sprintf("Could not find ticker for %s", run.Company)
	case entity.StageNewsFetching:
		return "No news found"
	default:
		return "Failed to analyze news"
	}
}

func (p *Presenter) println(s string) {
	fmt.Fprintln(p.out, s)
}

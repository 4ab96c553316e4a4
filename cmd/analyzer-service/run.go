package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-news-analyzer/internal/analyzer/delivery/cli"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var company string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyzes the news of one company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, appLogger := loadConfigAndLogger()
			defer func() { _ = appLogger.Sync() }()

			if company == "" {
				var err error
				if company, err = cli.PromptCompany(); err != nil {
					return err
				}
			}

			presenter := cli.NewPresenter(os.Stdout)
			pipeline := newPipeline(ctx, cfg, appLogger, presenter)

			appLogger.Debug("Running pipeline", logger.StringField("company", company))
			return cli.NewHandler(pipeline, presenter).Run(ctx, company)
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "Company name to analyze; prompts when empty")
	return cmd
}

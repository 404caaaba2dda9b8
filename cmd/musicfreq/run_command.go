package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"musicfreq/internal/analysis"
	"musicfreq/internal/bot"
	"musicfreq/internal/collector"
	"musicfreq/internal/config"
	"musicfreq/internal/daemon"
	"musicfreq/internal/logging"
	"musicfreq/internal/notifications"
	"musicfreq/internal/summary"
	"musicfreq/internal/telegram"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := buildDaemon(cfg, logger)
			if err != nil {
				return err
			}

			logger.Info("starting musicfreq",
				logging.String("config", ctx.configPath),
				logging.Bool("config_found", ctx.configExists),
				logging.String("llm", cfg.LLM.Provider),
				logging.Bool("proxy", cfg.HasProxy()),
			)
			if err := d.Start(runCtx); err != nil {
				if !errors.Is(err, daemon.ErrAlreadyRunning) {
					printConnectionHelp(cmd.ErrOrStderr())
				}
				return err
			}

			select {
			case <-runCtx.Done():
				logger.Info("shutdown requested")
			case <-d.Done():
			}
			d.Stop()
			return d.Err()
		},
	}
}

func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	client, err := telegram.NewClient(telegram.Config{
		Token:          cfg.Telegram.BotToken,
		BaseURL:        cfg.Telegram.BaseURL,
		ProxyURL:       cfg.Telegram.ProxyURL,
		RequestTimeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}

	summarizer := summary.New(cfg.GetLLM())
	analyzer := analysis.NewAnalyzer(summarizer, logger,
		analysis.WithTimeout(cfg.AssistTimeout()),
		analysis.WithMaxTokens(cfg.LLM.MaxTokens),
		analysis.WithAssist(cfg.Analysis.AssistEnabled),
	)
	handler := bot.New(client, collector.New(logger), analyzer, summarizer, logger,
		bot.WithProxyLabel(cfg.Redacted().Telegram.ProxyURL),
	)
	poller := telegram.NewPoller(client, handler, logger, telegram.WithPollTimeout(cfg.PollTimeout()))

	return daemon.New(cfg, poller, handler, notifications.NewService(cfg), logger)
}

func printConnectionHelp(w io.Writer) {
	fmt.Fprintln(w, "Cannot connect to Telegram API. Possible solutions:")
	for i, hint := range bot.TelegramHints {
		fmt.Fprintf(w, "  %d. %s\n", i+1, hint)
	}
}

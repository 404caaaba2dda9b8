package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"musicfreq/internal/bot"
	"musicfreq/internal/summary"
	"musicfreq/internal/telegram"
)

func newNetTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "nettest",
		Short: "Check connectivity to the Telegram Bot API and the LLM provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var pinger bot.Pinger
			if cfg.RequireTelegram() == nil {
				client, err := telegram.NewClient(telegram.Config{
					Token:          cfg.Telegram.BotToken,
					BaseURL:        cfg.Telegram.BaseURL,
					ProxyURL:       cfg.Telegram.ProxyURL,
					RequestTimeout: cfg.RequestTimeout(),
				})
				if err != nil {
					return err
				}
				pinger = client
			}

			proxy := cfg.Redacted().Telegram.ProxyURL
			report := bot.RunNetTest(cmd.Context(), pinger, summary.New(cfg.GetLLM()), 0, proxy)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Network Test", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderProbe(report.Telegram, colorize))
			fmt.Fprintln(out, renderProbe(report.LLM, colorize))
			if proxy != "" {
				fmt.Fprintln(out, renderStatusLine("Proxy", statusInfo, proxy, colorize))
			}

			printHints(out, "Troubleshooting Telegram connection", report.Telegram, bot.TelegramHints)
			printHints(out, "Troubleshooting LLM connection", report.LLM, bot.LLMHints)

			if !report.OK() {
				return errors.New("network test failed")
			}
			return nil
		},
	}
}

func printHints(out io.Writer, title string, probe bot.Probe, hints []string) {
	if probe.Status != bot.ProbeFailed {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, hint := range hints {
		fmt.Fprintf(out, "  - %s\n", hint)
	}
}

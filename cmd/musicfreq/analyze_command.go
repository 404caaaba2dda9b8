package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"musicfreq/internal/analysis"
	"musicfreq/internal/classify"
	"musicfreq/internal/config"
	"musicfreq/internal/logging"
	"musicfreq/internal/summary"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatText  = "text"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var assist bool
	var format string

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Rank a track log (one name per line) the way the bot does",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			log, err := readTrackLog(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(log) == 0 {
				fmt.Fprintln(out, "No tracks to analyze")
				return nil
			}

			if assist {
				if text, ok := summarizeLog(cmd, cfg, log); ok {
					fmt.Fprintln(out, text)
					return nil
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Assisted summary unavailable; showing local report")
			}

			report := analysis.Analyze(log)
			switch resolveFormat(format, out) {
			case formatTable:
				fmt.Fprintln(out, reportTable(report))
			case formatText:
				fmt.Fprintln(out, report.Text())
			default:
				return fmt.Errorf("unsupported format %q (use auto, table, or text)", format)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&assist, "assist", false, "Ask the configured LLM for the summary, falling back to the local report")
	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: auto, table, or text")
	return cmd
}

func summarizeLog(cmd *cobra.Command, cfg *config.Config, log []classify.TrackName) (string, bool) {
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		logger = logging.NewNop()
	}
	analyzer := analysis.NewAnalyzer(summary.New(cfg.GetLLM()), logger,
		analysis.WithTimeout(cfg.AssistTimeout()),
		analysis.WithMaxTokens(cfg.LLM.MaxTokens),
	)
	return analyzer.Summarize(cmd.Context(), log)
}

func resolveFormat(format string, out io.Writer) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != formatAuto {
		return format
	}
	if shouldColorize(out) {
		return formatTable
	}
	return formatText
}

// readTrackLog reads one track name per line. Blank lines are skipped and
// "-" means stdin.
func readTrackLog(stdin io.Reader, source string) ([]classify.TrackName, error) {
	reader := stdin
	if source != "-" {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open track log: %w", err)
		}
		defer file.Close()
		reader = file
	}
	if reader == nil {
		return nil, errors.New("no input")
	}

	var log []classify.TrackName
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		if line == "" {
			continue
		}
		log = append(log, classify.TrackName(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read track log: %w", err)
	}
	return log, nil
}

package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"musicfreq/internal/analysis"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type tableSpec struct {
	headers []string
	rows    [][]string
	aligns  []columnAlignment
	caption string
}

func renderTable(spec tableSpec) string {
	columns := len(spec.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(spec.headers, columns))
	for _, row := range spec.rows {
		tw.AppendRow(toRow(row, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(spec.aligns) && spec.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	if caption := strings.TrimSpace(spec.caption); caption != "" {
		tw.SetCaption("%s", caption)
	}

	return tw.Render()
}

func toRow(values []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// reportTable lays a frequency report out for a terminal.
func reportTable(report analysis.Report) string {
	rows := make([][]string, 0, len(report.Top))
	for i, entry := range report.Top {
		rows = append(rows, []string{strconv.Itoa(i + 1), string(entry.Track), strconv.Itoa(entry.Count)})
	}
	caption := "Total: " + strconv.Itoa(report.Unique) + " unique tracks found"
	if report.Overflow > 0 {
		caption = "...and " + strconv.Itoa(report.Overflow) + " more tracks\n" + caption
	}
	return renderTable(tableSpec{
		headers: []string{"#", "Track", "Plays"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignLeft, alignRight},
		caption: caption,
	})
}

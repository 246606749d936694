package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/forPelevin/splyt/internal/preflight"
	"github.com/forPelevin/splyt/internal/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var titleCase = cases.Title(language.English)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderClipResults(res types.ClipResults) string {
	rows := make([][]string, 0, len(res))
	for _, o := range res {
		status, detail := "saved", ""
		if !o.OK() {
			status, detail = "failed", o.Err.Error()
		}
		rows = append(rows, []string{
			displayPath(o.Path),
			titleCase.String(status),
			detail,
		})
	}
	return renderTable([]string{"Clip", "Status", "Error"}, rows, nil)
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "failed"
		}
		rows = append(rows, []string{r.Name, titleCase.String(status), r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}

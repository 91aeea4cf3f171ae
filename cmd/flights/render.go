package main

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/deppfellow/flight-data/internal/lib/utils"
	"github.com/deppfellow/flight-data/internal/service"
)

const noResults = "No results found."

// render prints result as JSON or as a table with humanized headers.
func render(w io.Writer, result *service.FlightsResult, asJSON bool) error {
	if asJSON {
		return utils.PrintJSON(w, result)
	}

	if result.Count == 0 {
		_, err := fmt.Fprintln(w, noResults)
		return err
	}

	columns := result.Rows.Columns()

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = utils.Humanize(c)
	}

	data := pterm.TableData{header}
	for _, row := range result.Rows {
		line := make([]string, len(columns))
		for i, c := range columns {
			line[i] = row.String(c)
		}
		data = append(data, line)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n%d result(s)\n", table, result.Count)
	return err
}

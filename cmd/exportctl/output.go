package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
	"github.com/olekukonko/tablewriter"
)

func renderTable(w io.Writer, header []any, rows [][]any) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}

func summaryRow(s *commerce.SyncSummary) []any {
	return []any{
		string(s.Resource),
		string(s.Status),
		strconv.Itoa(s.Fetched),
		strconv.Itoa(s.Created),
		strconv.Itoa(s.Updated),
		strconv.Itoa(s.Skipped),
		strconv.Itoa(s.Errors),
		(time.Duration(s.DurationMs) * time.Millisecond).String(),
	}
}

var summaryHeader = []any{"Resource", "Status", "Fetched", "Created", "Updated", "Skipped", "Errors", "Duration"}

func writeSummary(w io.Writer, s *commerce.SyncSummary) error {
	if err := renderTable(w, summaryHeader, [][]any{summaryRow(s)}); err != nil {
		return err
	}
	for _, msg := range s.ErrorMessages {
		fmt.Fprintln(w, "  !", msg)
	}
	return nil
}

func writeRuns(w io.Writer, runs []syncapp.SyncRunResponse) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No sync runs recorded.")
		return err
	}
	header := append([]any{"Started", "Trigger"}, summaryHeader...)
	rows := make([][]any, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		row := []any{r.Summary.StartedAt.Local().Format(time.DateTime), string(r.Trigger)}
		rows = append(rows, append(row, summaryRow(&r.Summary)...))
	}
	return renderTable(w, header, rows)
}

func writeSteps(w io.Writer, steps []persistence.StepResult) error {
	rows := make([][]any, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []any{s.Name, string(s.Kind), string(s.Status), s.Error})
	}
	return renderTable(w, []any{"Step", "Kind", "Status", "Error"}, rows)
}

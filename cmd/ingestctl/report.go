package main

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
)

const contentColumnRunes = 40

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderResult prints one row per record followed by the batch headline.
func renderResult(w io.Writer, result *ingest.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Content", "Outcome", "Schedule", "Post ID", "Note"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})

	for _, outcome := range result.Outcomes {
		t.AppendRow(table.Row{
			outcome.Index + 1,
			truncate(outcome.Source.EnglishContent),
			outcomeLabel(outcome.Kind),
			scheduleLabel(outcome.Decision),
			outcome.PostID,
			note(outcome),
		})
	}

	report := result.Report
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d ok", report.Succeeded, report.Total), "", "", ""})
	t.Render()

	fmt.Fprintln(w, ingest.Headline(report))
}

func renderPreview(w io.Writer, preview *ingest.Preview) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Content", "Tags", "Schedule"})

	for _, record := range preview.Records {
		t.AppendRow(table.Row{
			record.Index + 1,
			truncate(record.Record.EnglishContent),
			len(record.Record.Tags),
			scheduleLabel(record.Decision),
		})
	}
	t.Render()

	fmt.Fprintf(w, "%d records (%s)\n", len(preview.Records), preview.Format)
	for _, warning := range preview.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if len(preview.IgnoredLines) > 0 {
		fmt.Fprintf(w, "ignored lines: %v\n", preview.IgnoredLines)
	}
}

func outcomeLabel(kind domain.OutcomeKind) string {
	switch kind {
	case domain.OutcomeSucceeded:
		return text.FgGreen.Sprint(string(kind))
	case domain.OutcomeCancelled:
		return text.FgYellow.Sprint(string(kind))
	default:
		return text.FgRed.Sprint(string(kind))
	}
}

func scheduleLabel(decision domain.ScheduleDecision) string {
	if !decision.Scheduled {
		return string(domain.StatusDraft)
	}
	return decision.At.UTC().Format(time.RFC3339)
}

func note(outcome domain.BatchOutcome) string {
	switch {
	case outcome.Error != nil:
		return outcome.Error.Message
	case outcome.MediaError != nil:
		return "image skipped: " + outcome.MediaError.Message
	}
	return ""
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= contentColumnRunes {
		return s
	}
	return string([]rune(s)[:contentColumnRunes-1]) + "…"
}

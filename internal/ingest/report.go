package ingest

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

const excerptRunes = 60

// Summarize builds the consolidated report for a finished batch.
func Summarize(batchID string, outcomes []domain.BatchOutcome, started, finished time.Time) domain.BatchReport {
	report := domain.BatchReport{
		BatchID:    batchID,
		Total:      len(outcomes),
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
	}

	for _, outcome := range outcomes {
		if outcome.MediaError != nil {
			report.MediaFailures++
		}

		switch outcome.Kind {
		case domain.OutcomeSucceeded:
			report.Succeeded++
			if outcome.Decision.Scheduled {
				report.Scheduled++
			} else {
				report.Drafts++
			}
			continue
		case domain.OutcomeCancelled:
			report.Cancelled++
		default:
			report.Failed++
		}

		line := domain.ReportLine{
			Index:   outcome.Index,
			Kind:    outcome.Kind,
			Excerpt: excerpt(outcome.Source.EnglishContent),
		}
		if outcome.Error != nil {
			line.Stage = outcome.Error.Stage
			line.Message = outcome.Error.Message
		}
		report.Failures = append(report.Failures, line)
	}

	return report
}

// Headline is the one-line summary shown to the operator.
func Headline(report domain.BatchReport) string {
	msg := fmt.Sprintf("%d of %d records submitted (%d scheduled, %d drafts)",
		report.Succeeded, report.Total, report.Scheduled, report.Drafts)
	if report.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", report.Failed)
	}
	if report.Cancelled > 0 {
		msg += fmt.Sprintf(", %d cancelled", report.Cancelled)
	}
	if report.MediaFailures > 0 {
		msg += fmt.Sprintf(", %d without their image", report.MediaFailures)
	}
	return msg
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:excerptRunes]) + "…"
}

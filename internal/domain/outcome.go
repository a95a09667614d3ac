package domain

import "time"

// OutcomeKind classifies how a record's processing ended.
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
	// OutcomeCancelled marks records not processed because the batch was cancelled.
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageMedia     Stage = "media"
	StageSubmit    Stage = "submit"
	StageCancelled Stage = "cancelled"
)

// ErrorDetail is a serialisable error description.
type ErrorDetail struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// NewErrorDetail describes err at the given stage.
func NewErrorDetail(stage Stage, err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	return &ErrorDetail{Stage: stage, Message: err.Error()}
}

// BatchOutcome is the result for exactly one input record.
type BatchOutcome struct {
	Index   int              `json:"index"`
	Kind    OutcomeKind      `json:"kind"`
	Success bool             `json:"success"`
	Source  RawContentRecord `json:"source"`
	// Error is set when Kind is failed or cancelled.
	Error *ErrorDetail `json:"error,omitempty"`
	// MediaError records a failed upload. The record may still have succeeded.
	MediaError *ErrorDetail     `json:"media_error,omitempty"`
	PostID     string           `json:"post_id,omitempty"`
	Decision   ScheduleDecision `json:"schedule"`
}

// ReportLine describes one record that did not succeed.
type ReportLine struct {
	Index   int         `json:"index"`
	Kind    OutcomeKind `json:"kind"`
	Stage   Stage       `json:"stage"`
	Message string      `json:"message"`
	Excerpt string      `json:"excerpt"`
}

// BatchReport is the consolidated summary of one batch run.
type BatchReport struct {
	BatchID       string       `json:"batch_id"`
	Total         int          `json:"total"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	Cancelled     int          `json:"cancelled"`
	Scheduled     int          `json:"scheduled"`
	Drafts        int          `json:"drafts"`
	MediaFailures int          `json:"media_failures"`
	Failures      []ReportLine `json:"failures,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
}

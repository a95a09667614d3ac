// Package domain defines the records, payloads and outcomes that flow
// through the ingestion pipeline.
package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// RawContentRecord is one unit of content recovered from a batch source.
// Empty strings and a nil slice mean the field was absent.
type RawContentRecord struct {
	EnglishContent     string    `json:"english_content"`
	ChineseTranslation string    `json:"chinese_translation,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	ImagePrompt        string    `json:"image_prompt,omitempty"`
	ScheduledTimeRaw   string    `json:"scheduled_time,omitempty"`
	AttachedMedia      *MediaRef `json:"attached_media,omitempty"`
}

// HasContent reports whether the record may be emitted.
func (r RawContentRecord) HasContent() bool {
	return r.EnglishContent != ""
}

// Clone returns a deep copy so later stages never alias the parser's data.
func (r RawContentRecord) Clone() RawContentRecord {
	out := r
	out.Tags = slices.Clone(r.Tags)
	if r.AttachedMedia != nil {
		media := *r.AttachedMedia
		out.AttachedMedia = &media
	}
	return out
}

// MediaRef identifies an uploaded image.
type MediaRef struct {
	// DurableID is the opaque handle returned by the upload boundary.
	DurableID string `json:"durable_id"`
	// URL is where the uploaded object can be fetched.
	URL string `json:"url,omitempty"`
	// PreviewPath is the local file the upload was read from.
	PreviewPath string `json:"preview_path,omitempty"`
}

// PostStatus is the publication state sent to the persistence boundary.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
)

// ScheduleDecision is derived from a record's raw time and never stored on it.
type ScheduleDecision struct {
	Scheduled bool
	At        time.Time
}

// Draft is the decision for records without a usable timestamp.
func Draft() ScheduleDecision {
	return ScheduleDecision{}
}

// ScheduledAt is the decision for a record with a resolved instant.
func ScheduledAt(at time.Time) ScheduleDecision {
	return ScheduleDecision{Scheduled: true, At: at.UTC()}
}

// Status maps the decision onto a post status.
func (d ScheduleDecision) Status() PostStatus {
	if d.Scheduled {
		return StatusScheduled
	}
	return StatusDraft
}

// Instant returns the scheduled time, or nil for drafts.
func (d ScheduleDecision) Instant() *time.Time {
	if !d.Scheduled {
		return nil
	}
	at := d.At
	return &at
}

type scheduleJSON struct {
	Status      PostStatus `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (d ScheduleDecision) MarshalJSON() ([]byte, error) {
	return json.Marshal(scheduleJSON{Status: d.Status(), ScheduledAt: d.Instant()})
}

func (d *ScheduleDecision) UnmarshalJSON(data []byte) error {
	var raw scheduleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Draft()
	if raw.Status == StatusScheduled && raw.ScheduledAt != nil {
		*d = ScheduledAt(*raw.ScheduledAt)
	}
	return nil
}

package domain

import "time"

// PostMetadata carries the non-body fields of a record.
type PostMetadata struct {
	OriginalText string `json:"original_text"`
	Translation  string `json:"translation,omitempty"`
	ImagePrompt  string `json:"image_prompt,omitempty"`
}

// PostPayload is what the persistence boundary receives for one record.
type PostPayload struct {
	Body        string        `json:"body"`
	Metadata    *PostMetadata `json:"metadata,omitempty"`
	Tags        []string      `json:"tags"`
	MediaIDs    []string      `json:"media_ids"`
	Status      PostStatus    `json:"status"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty"`
}

// NewPostPayload assembles the payload for a record and its schedule
// decision. Tags and media ids are never nil so they encode as [].
func NewPostPayload(record RawContentRecord, decision ScheduleDecision) PostPayload {
	tags := make([]string, len(record.Tags))
	copy(tags, record.Tags)

	mediaIDs := []string{}
	if record.AttachedMedia != nil && record.AttachedMedia.DurableID != "" {
		mediaIDs = append(mediaIDs, record.AttachedMedia.DurableID)
	}

	return PostPayload{
		Body: record.EnglishContent,
		Metadata: &PostMetadata{
			OriginalText: record.EnglishContent,
			Translation:  record.ChineseTranslation,
			ImagePrompt:  record.ImagePrompt,
		},
		Tags:        tags,
		MediaIDs:    mediaIDs,
		Status:      decision.Status(),
		ScheduledAt: decision.Instant(),
	}
}

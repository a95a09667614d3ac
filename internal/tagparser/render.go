package tagparser

import (
	"strings"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// Render writes a record back in the tagged dialect, omitting empty
// fields. Attached media is not part of the dialect.
func Render(record domain.RawContentRecord) string {
	var b strings.Builder
	writeLine(&b, PrefixEnglish, record.EnglishContent)
	writeOptional(&b, PrefixChinese, record.ChineseTranslation)
	writeOptional(&b, PrefixTags, strings.Join(record.Tags, " "))
	writeOptional(&b, PrefixImagePrompt, record.ImagePrompt)
	writeOptional(&b, PrefixTime, record.ScheduledTimeRaw)
	b.WriteString(PrefixEnd)
	b.WriteString("\n")
	return b.String()
}

// RenderAll renders records separated by blank lines.
func RenderAll(records []domain.RawContentRecord) string {
	blocks := make([]string, len(records))
	for i, record := range records {
		blocks[i] = Render(record)
	}
	return strings.Join(blocks, "\n")
}

func writeOptional(b *strings.Builder, prefix, value string) {
	if value != "" {
		writeLine(b, prefix, value)
	}
}

func writeLine(b *strings.Builder, prefix, value string) {
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

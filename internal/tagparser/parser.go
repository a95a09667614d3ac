// Package tagparser turns the line-prefixed content dialect into raw
// content records.
//
// Each line may start with one of six case-sensitive prefixes:
//
//	[EN]   english content; starts a new record
//	[CN]   chinese translation
//	[TAGS] space separated #hashtags
//	[IMG]  image prompt
//	[TIME] scheduled time, kept raw
//	[END]  closes the current record
//
// Lines without a prefix are ignored, except that the first one seen while
// no record is open switches to the positional legacy form (see legacy.go).
package tagparser

import (
	"strings"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// Line prefixes of the tagged dialect.
const (
	PrefixEnglish     = "[EN]"
	PrefixChinese     = "[CN]"
	PrefixTags        = "[TAGS]"
	PrefixImagePrompt = "[IMG]"
	PrefixTime        = "[TIME]"
	PrefixEnd         = "[END]"
)

type lineKind int

const (
	lineUntagged lineKind = iota
	lineEnglish
	lineChinese
	lineTags
	lineImagePrompt
	lineTime
	lineEnd
)

var prefixes = []struct {
	prefix string
	kind   lineKind
}{
	{PrefixEnglish, lineEnglish},
	{PrefixChinese, lineChinese},
	{PrefixTags, lineTags},
	{PrefixImagePrompt, lineImagePrompt},
	{PrefixTime, lineTime},
	{PrefixEnd, lineEnd},
}

// classify splits a trimmed line into its kind and value.
func classify(line string) (lineKind, string) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.kind, strings.TrimSpace(rest)
		}
	}
	return lineUntagged, line
}

// Result is the detailed output of ParseDetailed.
type Result struct {
	Records []domain.RawContentRecord
	// IgnoredLines holds the 1-based numbers of untagged lines that were dropped.
	IgnoredLines []int
}

// Parse extracts records from text in input order. It never fails;
// malformed input yields fewer records.
func Parse(text string) []domain.RawContentRecord {
	return ParseDetailed(text).Records
}

// ParseDetailed is Parse plus the line numbers that were ignored.
func ParseDetailed(text string) Result {
	res := Result{Records: []domain.RawContentRecord{}}
	acc := accumulator{}

	emit := func(record *domain.RawContentRecord) {
		if record != nil {
			res.Records = append(res.Records, *record)
		}
	}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		kind, value := classify(line)
		if kind == lineUntagged && acc.state == stateTagged {
			res.IgnoredLines = append(res.IgnoredLines, i+1)
			continue
		}

		var emitted *domain.RawContentRecord
		acc, emitted = acc.apply(kind, value)
		emit(emitted)
	}

	emit(acc.finish())
	return res
}

// ParseTags keeps the whitespace-separated tokens that start with '#',
// preserving order and duplicates.
func ParseTags(value string) []string {
	var tags []string
	for _, token := range strings.Fields(value) {
		if strings.HasPrefix(token, "#") {
			tags = append(tags, token)
		}
	}
	return tags
}

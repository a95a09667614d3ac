// Package csvimport converts spreadsheet exports into the tagged dialect
// understood by tagparser.
//
// By default rows are split on every comma and a single leading and
// trailing double quote is stripped from each cell. Quoted cells that
// contain commas are therefore split; WithRFC4180 switches to a real CSV
// reader for exports that need it.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/tagparser"
)

// Column names recognised in the header row.
const (
	ColumnEnglish       = "english_content"
	ColumnChinese       = "chinese_translation"
	ColumnTags          = "tags"
	ColumnImagePrompt   = "image_prompt"
	ColumnScheduledTime = "scheduled_time"
)

type options struct {
	rfc4180 bool
}

// Option configures Normalize.
type Option func(*options)

// WithRFC4180 parses quoted cells properly. Newlines inside a quoted cell
// are folded to spaces since the tagged dialect is line oriented.
func WithRFC4180() Option {
	return func(o *options) { o.rfc4180 = true }
}

// Normalize converts CSV text to tagged text. It never fails: unreadable
// rows in RFC 4180 mode end the input early.
func Normalize(csvText string, opts ...Option) string {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var rows [][]string
	if o.rfc4180 {
		rows = splitRFC4180(csvText)
	} else {
		rows = splitCompat(csvText)
	}
	return NormalizeRows(rows)
}

// NormalizeRows renders already-split rows. The first row is the header.
func NormalizeRows(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	layout := newColumnLayout(rows[0])
	var b strings.Builder
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		layout.writeBlock(&b, row)
	}
	return b.String()
}

// columnLayout maps header names to row positions.
type columnLayout struct {
	structured bool
	english    int
	chinese    int
	tags       int
	image      int
	time       int
}

func newColumnLayout(header []string) columnLayout {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	lookup := func(name string) int {
		if i, ok := positions[name]; ok {
			return i
		}
		return -1
	}

	layout := columnLayout{
		english: lookup(ColumnEnglish),
		chinese: lookup(ColumnChinese),
		tags:    lookup(ColumnTags),
		image:   lookup(ColumnImagePrompt),
		time:    lookup(ColumnScheduledTime),
	}
	layout.structured = layout.english >= 0 && layout.chinese >= 0
	return layout
}

func (l columnLayout) writeBlock(b *strings.Builder, row []string) {
	if !l.structured {
		writeTagged(b, tagparser.PrefixEnglish, cell(row, 0))
		b.WriteString(tagparser.PrefixEnd + "\n\n")
		return
	}

	writeTagged(b, tagparser.PrefixEnglish, cell(row, l.english))
	writeTagged(b, tagparser.PrefixChinese, cell(row, l.chinese))
	writeTagged(b, tagparser.PrefixTags, cell(row, l.tags))
	writeTagged(b, tagparser.PrefixImagePrompt, cell(row, l.image))
	if scheduled := cell(row, l.time); scheduled != "" {
		writeTagged(b, tagparser.PrefixTime, scheduled)
	}
	b.WriteString(tagparser.PrefixEnd + "\n\n")
}

func writeTagged(b *strings.Builder, prefix, value string) {
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// cell returns the cleaned value at i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

func cleanCell(value string) string {
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func splitCompat(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i, field := range fields {
			field = strings.TrimSpace(field)
			field = strings.TrimPrefix(field, `"`)
			fields[i] = strings.TrimSuffix(field, `"`)
		}
		rows = append(rows, fields)
	}
	return rows
}

func splitRFC4180(text string) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, readErr := r.Read()
		if readErr != nil {
			// io.EOF or a malformed row; either way the rest is unusable.
			break
		}
		rows = append(rows, row)
	}
	return rows
}

// Validate checks that a header row selects structured mode and reports
// which columns are missing. Callers use it to warn before degrading.
func Validate(header []string) error {
	layout := newColumnLayout(header)
	if layout.structured {
		return nil
	}

	var missing []string
	if layout.english < 0 {
		missing = append(missing, ColumnEnglish)
	}
	if layout.chinese < 0 {
		missing = append(missing, ColumnChinese)
	}
	return fmt.Errorf("%w: %s", ErrDegradedHeader, strings.Join(missing, ", "))
}

// ErrDegradedHeader means the first column will be taken as the whole post.
var ErrDegradedHeader = errors.New("header missing structured columns")

// HeaderOf returns the header row of CSV text using the compat split.
func HeaderOf(csvText string) []string {
	rows := splitCompat(csvText)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

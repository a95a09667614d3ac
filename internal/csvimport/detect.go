package csvimport

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/tagparser"
)

// Format is the shape of an uploaded batch file.
type Format string

const (
	FormatTagged Format = "tagged"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvMIME  = "text/csv"
)

// ParseFormat maps a user supplied format name. "auto" and "" return "".
func ParseFormat(name string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatTagged, "text", "txt":
		return FormatTagged, true
	case FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	case "", "auto":
		return "", true
	default:
		return "", false
	}
}

// DetectFormat picks a format from the file name, falling back to
// content sniffing when the extension says nothing.
func DetectFormat(filename string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".txt", ".md":
		return FormatTagged
	}

	if mimetype.Detect(content).Is(xlsxMIME) {
		return FormatXLSX
	}

	firstLine := strings.TrimSpace(firstNonBlank(string(content)))
	if isTagLine(firstLine) {
		return FormatTagged
	}
	if strings.Contains(firstLine, ColumnEnglish) && strings.Contains(firstLine, ",") {
		return FormatCSV
	}
	// Header-less or degraded exports: mimetype reports text/csv only when
	// every row has the same number of fields, more than one.
	if mimetype.Detect(content).Is(csvMIME) {
		return FormatCSV
	}
	return FormatTagged
}

func firstNonBlank(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func isTagLine(line string) bool {
	for _, prefix := range []string{
		tagparser.PrefixEnglish, tagparser.PrefixChinese, tagparser.PrefixTags,
		tagparser.PrefixImagePrompt, tagparser.PrefixTime, tagparser.PrefixEnd,
	} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

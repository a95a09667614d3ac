package tagparser

import "github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"

type state int

const (
	// stateEmpty: nothing has been collected for the next record.
	stateEmpty state = iota
	// stateTagged: at least one tagged line has been applied.
	stateTagged
	// stateLegacy: collecting positional lines.
	stateLegacy
)

// accumulator is the record under construction. Transitions return a new
// value and never share slices with records that were already emitted.
type accumulator struct {
	state  state
	record domain.RawContentRecord
	// position counts the positional lines consumed in stateLegacy.
	position int
}

// apply consumes one non-blank line. The second result is the record
// closed by this line, if any.
func (a accumulator) apply(kind lineKind, value string) (accumulator, *domain.RawContentRecord) {
	var emitted *domain.RawContentRecord

	switch kind {
	case lineUntagged:
		return a.applyPositional(value)
	case lineEnglish:
		if a.record.HasContent() {
			emitted = a.finish()
			a = accumulator{}
		}
		a.record.EnglishContent = value
	case lineChinese:
		a.record.ChineseTranslation = value
	case lineTags:
		a.record.Tags = ParseTags(value)
	case lineImagePrompt:
		a.record.ImagePrompt = value
	case lineTime:
		a.record.ScheduledTimeRaw = value
	case lineEnd:
		return accumulator{}, a.finish()
	}

	// A tagged line with no usable value ([EN] alone, [TAGS] without
	// hashtags) leaves the accumulator empty, so legacy lines may follow.
	if isBlank(a.record) {
		return accumulator{}, emitted
	}

	// Any other tagged line ends positional collection; tagged values win.
	a.state = stateTagged
	a.position = 0
	return a, emitted
}

// isBlank reports whether no field of r has been set.
func isBlank(r domain.RawContentRecord) bool {
	return r.EnglishContent == "" &&
		r.ChineseTranslation == "" &&
		len(r.Tags) == 0 &&
		r.ImagePrompt == "" &&
		r.ScheduledTimeRaw == ""
}

// finish returns the record if it may be emitted.
func (a accumulator) finish() *domain.RawContentRecord {
	if !a.record.HasContent() {
		return nil
	}
	record := a.record.Clone()
	return &record
}

package tagparser

import "github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"

// legacyFields is the number of positional lines in one legacy record:
// english, chinese, tags, image prompt.
const legacyFields = 4

// applyPositional handles an untagged line. It starts a legacy record from
// stateEmpty and fills the next positional field in stateLegacy; in
// stateTagged the caller drops the line before reaching here.
func (a accumulator) applyPositional(value string) (accumulator, *domain.RawContentRecord) {
	if a.state == stateTagged {
		return a, nil
	}

	switch a.position {
	case 0:
		a.record.EnglishContent = value
	case 1:
		a.record.ChineseTranslation = value
	case 2:
		a.record.Tags = ParseTags(value)
	case 3:
		a.record.ImagePrompt = value
	}
	a.state = stateLegacy
	a.position++

	if a.position == legacyFields {
		return accumulator{}, a.finish()
	}
	return a, nil
}

package tagparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// ErrIgnoredLines is wrapped by the error ParseStrict returns.
var ErrIgnoredLines = errors.New("input has lines that belong to no record")

// LineError lists the lines ParseStrict refused to drop silently.
type LineError struct {
	Lines []int
}

func (e *LineError) Error() string {
	nums := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		nums[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s: line %s", ErrIgnoredLines, strings.Join(nums, ", "))
}

func (e *LineError) Unwrap() error { return ErrIgnoredLines }

// ParseStrict is the opt-in strict variant of Parse: it fails instead of
// ignoring untagged lines inside a tagged record.
func ParseStrict(text string) ([]domain.RawContentRecord, error) {
	res := ParseDetailed(text)
	if len(res.IgnoredLines) > 0 {
		return nil, &LineError{Lines: res.IgnoredLines}
	}
	return res.Records, nil
}

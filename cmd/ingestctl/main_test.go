package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yml")))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTemplateCommand(t *testing.T) {
	out, err := execute(t, "template")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "english_content,chinese_translation,tags,image_prompt,scheduled_time\n"))
}

func TestParseCommand_JSON(t *testing.T) {
	path := writeFile(t, "batch.txt", "[EN] hello\n[TAGS] #a #b\n[END]\n")

	out, err := execute(t, "parse", "--file", path)
	require.NoError(t, err)

	var records []domain.RawContentRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].EnglishContent)
	assert.Equal(t, []string{"#a", "#b"}, records[0].Tags)
}

func TestParseCommand_TaggedFromCSV(t *testing.T) {
	path := writeFile(t, "batch.csv", "english_content,chinese_translation\nHi,你好\n")

	out, err := execute(t, "parse", "--file", path, "--tagged")
	require.NoError(t, err)
	assert.Contains(t, out, "[EN] Hi")
	assert.Contains(t, out, "[CN] 你好")
}

func TestRunCommand_DryRun(t *testing.T) {
	path := writeFile(t, "batch.txt", "[EN] later\n[TIME] 2024-01-15T10:00:00Z\n[END]\n[EN] now\n[END]\n")

	out, err := execute(t, "run", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-15T10:00:00Z")
	assert.Contains(t, out, "draft")
	assert.Contains(t, out, "2 records (tagged)")
}

func TestRunCommand_RequiresFile(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}

func TestParseAttachments(t *testing.T) {
	img := writeFile(t, "cover.png", "\x89PNG\r\n\x1a\n")

	files, err := parseAttachments([]string{"2=" + img})
	require.NoError(t, err)
	require.Contains(t, files, 1)
	assert.Equal(t, "cover.png", files[1].Name)
	assert.Equal(t, img, files[1].Path)

	for _, bad := range []string{"0=" + img, "x=" + img, img, "3="} {
		_, badErr := parseAttachments([]string{bad})
		require.ErrorIs(t, badErr, errBadAttach, bad)
	}
}

func TestRenderResult(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	outcomes := []domain.BatchOutcome{
		{Index: 0, Kind: domain.OutcomeSucceeded, Success: true, PostID: "p1",
			Source: domain.RawContentRecord{EnglishContent: "first"}, Decision: domain.ScheduledAt(at)},
		{Index: 1, Kind: domain.OutcomeFailed,
			Source: domain.RawContentRecord{EnglishContent: "second"},
			Error:  &domain.ErrorDetail{Stage: domain.StageSubmit, Message: "boundary down"}},
	}
	result := &ingest.Result{Report: ingest.Summarize("b", outcomes, at, at), Outcomes: outcomes}

	var out bytes.Buffer
	renderResult(&out, result)

	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "boundary down")
	assert.Contains(t, out.String(), "1 of 2 records submitted (1 scheduled, 0 drafts), 1 failed")
}

func TestMigrateCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, "migrate", "up", "extra")
	require.Error(t, err)
}

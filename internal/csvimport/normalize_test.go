package csvimport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/csvimport"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/tagparser"
)

func TestNormalize_StructuredMode(t *testing.T) {
	t.Parallel()

	input := "english_content,chinese_translation,tags,image_prompt,scheduled_time\n" +
		"Hello world,你好世界,#hello #world,globe,2024-03-15T09:30:00Z\n" +
		"\n" +
		"Second,第二,,,\n"

	want := "[EN] Hello world\n[CN] 你好世界\n[TAGS] #hello #world\n[IMG] globe\n[TIME] 2024-03-15T09:30:00Z\n[END]\n\n" +
		"[EN] Second\n[CN] 第二\n[TAGS] \n[IMG] \n[END]\n\n"

	assert.Equal(t, want, csvimport.Normalize(input))
}

func TestNormalize_HeaderOrderAndMissingTimeColumn(t *testing.T) {
	t.Parallel()

	input := "tags,chinese_translation,english_content\n#a,中文,English\n"
	records := tagparser.Parse(csvimport.Normalize(input))

	require.Len(t, records, 1)
	assert.Equal(t, domain.RawContentRecord{
		EnglishContent:     "English",
		ChineseTranslation: "中文",
		Tags:               []string{"#a"},
	}, records[0])
}

func TestNormalize_DegradedMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing chinese column", input: "english_content,tags\nfirst,#a\nsecond,#b\n"},
		{name: "unrelated header", input: "title,notes\nfirst,x\nsecond,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := csvimport.Normalize(tt.input)
			assert.Equal(t, "[EN] first\n[END]\n\n[EN] second\n[END]\n\n", out)

			records := tagparser.Parse(out)
			require.Len(t, records, 2)
			assert.Nil(t, records[0].Tags)
		})
	}
}

func TestNormalize_QuoteStripping(t *testing.T) {
	t.Parallel()

	input := "english_content,chinese_translation\n\"Quoted\",\"引号\"\n"
	records := tagparser.Parse(csvimport.Normalize(input))

	require.Len(t, records, 1)
	assert.Equal(t, "Quoted", records[0].EnglishContent)
	assert.Equal(t, "引号", records[0].ChineseTranslation)
}

func TestNormalize_CompatModeSplitsQuotedCommas(t *testing.T) {
	t.Parallel()

	input := "english_content,chinese_translation,tags\n\"Hello, world\",你好,#a\n"
	records := tagparser.Parse(csvimport.Normalize(input))

	require.Len(t, records, 1)
	assert.Equal(t, "Hello", records[0].EnglishContent)
	assert.Equal(t, "world", records[0].ChineseTranslation)
	assert.Nil(t, records[0].Tags)
}

func TestNormalize_RFC4180Mode(t *testing.T) {
	t.Parallel()

	input := "english_content,chinese_translation,tags\n" +
		"\"Hello, world\",\"你好，世界\",#a #b\n" +
		"\"Multi\nline\",\"He said \"\"hi\"\"\",\n"
	records := tagparser.Parse(csvimport.Normalize(input, csvimport.WithRFC4180()))

	require.Len(t, records, 2)
	assert.Equal(t, "Hello, world", records[0].EnglishContent)
	assert.Equal(t, []string{"#a", "#b"}, records[0].Tags)
	assert.Equal(t, "Multi line", records[1].EnglishContent)
	assert.Equal(t, `He said "hi"`, records[1].ChineseTranslation)
}

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, csvimport.Normalize(""))
	assert.Empty(t, csvimport.Normalize("english_content,chinese_translation\n"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, csvimport.Validate(csvimport.TemplateColumns))

	err := csvimport.Validate([]string{"english_content", "tags"})
	require.ErrorIs(t, err, csvimport.ErrDegradedHeader)
	assert.Contains(t, err.Error(), "chinese_translation")
}

func TestTemplate_RoundTripsThroughPipeline(t *testing.T) {
	t.Parallel()

	tmpl := csvimport.Template()
	assert.True(t, strings.HasPrefix(tmpl, "english_content,chinese_translation,tags,image_prompt,scheduled_time\n"))
	assert.Equal(t, csvimport.TemplateColumns, csvimport.HeaderOf(tmpl))

	records := tagparser.Parse(csvimport.Normalize(tmpl))
	require.Len(t, records, 1)
	assert.Equal(t, []string{"#tag1", "#tag2"}, records[0].Tags)
	assert.Equal(t, "2024-03-15T09:30:00Z", records[0].ScheduledTimeRaw)
}

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestNormalizeXLSX(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t, [][]any{
		{"english_content", "chinese_translation", "tags", "image_prompt", "scheduled_time"},
		{"Commas, survive here", "逗号，保留", "#xlsx", "sheet", "2024-03-15T09:30:00Z"},
		{"Plain", "普通", "", "", ""},
	})

	out, err := csvimport.NormalizeXLSX(buf)
	require.NoError(t, err)

	records := tagparser.Parse(out)
	require.Len(t, records, 2)
	assert.Equal(t, "Commas, survive here", records[0].EnglishContent)
	assert.Equal(t, []string{"#xlsx"}, records[0].Tags)
	assert.Equal(t, "Plain", records[1].EnglishContent)
	assert.Empty(t, records[1].ScheduledTimeRaw)
}

func TestNormalizeXLSX_Invalid(t *testing.T) {
	t.Parallel()

	_, err := csvimport.NormalizeXLSX(strings.NewReader("not a workbook"))
	require.Error(t, err)

	_, err = csvimport.NormalizeXLSX(buildWorkbook(t, nil))
	require.ErrorIs(t, err, csvimport.ErrEmptyWorkbook)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	workbook := buildWorkbook(t, [][]any{{"english_content"}}).Bytes()

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     csvimport.Format
	}{
		{name: "csv extension", filename: "posts.CSV", content: []byte("anything"), want: csvimport.FormatCSV},
		{name: "xlsx extension", filename: "posts.xlsx", want: csvimport.FormatXLSX},
		{name: "text extension", filename: "posts.txt", content: []byte("english_content,x"), want: csvimport.FormatTagged},
		{name: "sniffed workbook", filename: "upload", content: workbook, want: csvimport.FormatXLSX},
		{name: "sniffed csv header", filename: "", content: []byte("english_content,chinese_translation\na,b"), want: csvimport.FormatCSV},
		{name: "tagged text", filename: "", content: []byte("[EN] hello\n[END]"), want: csvimport.FormatTagged},
		{
			name:     "degraded csv without extension",
			filename: "export",
			content:  []byte("post,note\nHello world,first\nSecond post,second\n"),
			want:     csvimport.FormatCSV,
		},
		{
			name:     "tagged lines with commas stay tagged",
			filename: "",
			content:  []byte("[EN] hello, world\n[CN] 你好, 世界\n[END]\n"),
			want:     csvimport.FormatTagged,
		},
		{
			name:     "legacy text with a comma stays tagged",
			filename: "",
			content:  []byte("Hello, world\n你好\n#tag\nprompt\n"),
			want:     csvimport.FormatTagged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, csvimport.DetectFormat(tt.filename, tt.content))
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, ok := csvimport.ParseFormat("CSV")
	assert.True(t, ok)
	assert.Equal(t, csvimport.FormatCSV, f)

	f, ok = csvimport.ParseFormat("auto")
	assert.True(t, ok)
	assert.Empty(t, f)

	_, ok = csvimport.ParseFormat("json")
	assert.False(t, ok)
}

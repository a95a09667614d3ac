package csvimport

import "strings"

// TemplateColumns is the header of the downloadable template, in order.
var TemplateColumns = []string{
	ColumnEnglish,
	ColumnChinese,
	ColumnTags,
	ColumnImagePrompt,
	ColumnScheduledTime,
}

// TemplateFilename is the suggested download name.
const TemplateFilename = "content_template.csv"

const templateExample = "Your English post text,你的中文翻译,#tag1 #tag2,A short description of the image,2024-03-15T09:30:00Z"

// Template returns the CSV template: the header and one example row.
func Template() string {
	return strings.Join(TemplateColumns, ",") + "\n" + templateExample + "\n"
}

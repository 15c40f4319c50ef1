package constants

import "strings"

// Format is the closed set of document encodings the pipeline understands.
type Format string

const (
	SPREADSHEET Format = "SPREADSHEET"
	WORDDOC     Format = "WORDDOC"
	PDF         Format = "PDF"
	IMAGE       Format = "IMAGE"
)

var extToFormat = map[string]Format{
	"xlsx": SPREADSHEET,
	"xls":  SPREADSHEET,
	"docx": WORDDOC,
	"doc":  WORDDOC,
	"pdf":  PDF,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension (with or without dot) to its Format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) Format {
	return extToFormat[NormalizeExt(ext)]
}

package extract

import (
	"strings"
	"time"
)

// Text is the universal intermediate representation all downstream parsing
// consumes: ordered segments (one per page/sheet/paragraph group) plus their
// flattened concatenation. No format metadata survives extraction.
type Text struct {
	Segments []string
	Flat     string
}

// newText flattens segments with the given separator.
func newText(segments []string, sep string) Text {
	return Text{Segments: segments, Flat: strings.Join(segments, sep)}
}

// Empty reports whether the text carries no usable content. Whitespace-only
// extraction counts as empty; the orchestrator treats it as failure.
func (t Text) Empty() bool {
	return strings.TrimSpace(t.Flat) == ""
}

// Result is one extraction outcome with the strategy that produced it.
type Result struct {
	Text     Text
	Method   string // "sheet" | "word" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Duration time.Duration
}

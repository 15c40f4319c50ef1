package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/storage"
)

// MinDirectPDFChars is the text-sufficiency threshold for the OCR fallback
// decision: a direct extraction at or above this trimmed length is accepted
// without OCR. It is a cheap proxy for "this PDF has a real text layer";
// sparse-but-valid PDFs below it pay an unnecessary OCR pass.
const MinDirectPDFChars = 500

// OCRFallback is the slice of the OCR service the extractor needs.
type OCRFallback interface {
	// DetectText runs single-shot detection (raster images).
	DetectText(ctx context.Context, bucket, key string) (string, error)
	// ExtractTextAsync runs the async job protocol (scanned PDFs).
	ExtractTextAsync(ctx context.Context, bucket, key string) (string, error)
}

// Extractor picks a text-extraction strategy per document format.
type Extractor struct {
	ocr    OCRFallback
	logger *slog.Logger

	// pdfText is a seam for tests; production always uses PDFText.
	pdfText func(content []byte) (Text, error)
}

func NewExtractor(ocr OCRFallback, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{ocr: ocr, logger: logger, pdfText: PDFText}
}

// FromBytes extracts text from in-memory content with no OCR path: raster
// images are not reachable here (the bytes entry point rejects them upstream)
// and PDFs get direct extraction only.
func (e *Extractor) FromBytes(ctx context.Context, content []byte, format constants.Format) (Result, error) {
	start := time.Now()
	var (
		text   Text
		method string
		err    error
	)
	switch format {
	case constants.SPREADSHEET:
		text, err = SpreadsheetText(content)
		method = "sheet"
	case constants.WORDDOC:
		text, err = WordDocText(content)
		method = "word"
	case constants.PDF:
		text, err = e.pdfText(content)
		method = "pdf-text"
	default:
		return Result{}, common.NewUnsupportedFormat(fmt.Sprintf("unsupported format: %s", format))
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Method: method, Duration: time.Since(start)}, nil
}

// FromDocument extracts text from fetched content, with the OCR fallback for
// PDFs and the single-shot OCR path for images. loc supplies the bucket/key
// the OCR service reads from.
func (e *Extractor) FromDocument(ctx context.Context, content []byte, loc storage.Locator, format constants.Format) (Result, error) {
	start := time.Now()
	switch format {
	case constants.SPREADSHEET, constants.WORDDOC:
		return e.FromBytes(ctx, content, format)

	case constants.PDF:
		res, err := e.extractPDF(ctx, content, loc)
		res.Duration = time.Since(start)
		return res, err

	case constants.IMAGE:
		bucket, key, ok := loc.ObjectRef()
		if !ok {
			return Result{}, common.NewUnreadableDocument("Could not extract text from document",
				fmt.Errorf("image locator %q has no object reference for ocr", loc.Raw))
		}
		detected, err := e.ocr.DetectText(ctx, bucket, key)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Text:     newText(strings.Split(detected, "\n"), "\n"),
			Method:   "image-ocr",
			Duration: time.Since(start),
		}, nil
	}

	return Result{}, common.NewUnsupportedFormat(fmt.Sprintf("unsupported format: %s", format))
}

// extractPDF runs direct extraction first and accepts it when the trimmed text
// reaches MinDirectPDFChars; anything shorter (including unparsable streams)
// falls back to the async OCR job.
func (e *Extractor) extractPDF(ctx context.Context, content []byte, loc storage.Locator) (Result, error) {
	text, directErr := e.pdfText(content)
	if directErr == nil && len(strings.TrimSpace(text.Flat)) >= MinDirectPDFChars {
		e.logger.Info("extract.pdf.direct_ok", "chars", len(text.Flat))
		return Result{Text: text, Method: "pdf-text"}, nil
	}

	e.logger.Info("extract.pdf.fallback_ocr",
		"direct_chars", len(strings.TrimSpace(text.Flat)),
		"direct_error", directErr != nil,
	)

	bucket, key, ok := loc.ObjectRef()
	if !ok {
		// No object reference to hand to the OCR service; the short direct
		// result is all we have.
		if directErr != nil {
			return Result{}, directErr
		}
		return Result{Text: text, Method: "pdf-text"}, nil
	}

	detected, err := e.ocr.ExtractTextAsync(ctx, bucket, key)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:   newText(strings.Split(detected, "\n"), "\n"),
		Method: "pdf-ocr",
	}, nil
}

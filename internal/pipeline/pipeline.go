// Package pipeline orchestrates the full document flow: locate, fetch,
// extract text, and parse into structured records. All entry points return a
// Result envelope; the only errors that surface as failures are the ones the
// caller can act on (bad input, unreadable document). Model failures are
// masked into the null-filled fallback record so a flaky model never fails a
// whole request.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/entity"
	"github.com/infradyn/docextract/internal/extract"
	"github.com/infradyn/docextract/internal/storage"
	"github.com/infradyn/docextract/internal/tabular"
)

// rawTextLimit caps the raw_text attached to parsed records.
const rawTextLimit = 5000

// Fetcher resolves a locator into raw document bytes.
type Fetcher interface {
	Fetch(ctx context.Context, loc storage.Locator) ([]byte, error)
}

// TextExtractor is the strategy-picking text extraction layer.
type TextExtractor interface {
	FromBytes(ctx context.Context, content []byte, format constants.Format) (extract.Result, error)
	FromDocument(ctx context.Context, content []byte, loc storage.Locator, format constants.Format) (extract.Result, error)
}

// DocumentParser turns extracted text into structured records.
type DocumentParser interface {
	ParsePurchaseOrder(ctx context.Context, text string) (entity.PurchaseOrder, error)
	ParseInvoice(ctx context.Context, text string) (entity.Invoice, error)
	ParseMilestones(ctx context.Context, text string) ([]entity.Milestone, error)
}

type Pipeline struct {
	resolver  Fetcher
	extractor TextExtractor
	parser    DocumentParser
	logger    *slog.Logger
}

func New(resolver Fetcher, extractor TextExtractor, parser DocumentParser, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{resolver: resolver, extractor: extractor, parser: parser, logger: logger}
}

// ExtractPurchaseOrder runs the full flow for a purchase order referenced by
// URL.
func (p *Pipeline) ExtractPurchaseOrder(ctx context.Context, fileURL string) Result {
	return p.extractDocument(ctx, fileURL, constants.PurchaseOrder)
}

// ExtractInvoice runs the full flow for an invoice referenced by URL.
func (p *Pipeline) ExtractInvoice(ctx context.Context, fileURL string) Result {
	return p.extractDocument(ctx, fileURL, constants.Invoice)
}

func (p *Pipeline) extractDocument(ctx context.Context, fileURL string, docType constants.DocumentType) Result {
	start := time.Now()
	p.logger.Info("pipeline.extract.start", "doc_type", docType, "file_url", fileURL)

	loc, format, err := p.locate(fileURL)
	if err != nil {
		return fail(err)
	}

	content, err := p.resolver.Fetch(ctx, loc)
	if err != nil {
		return fail(err)
	}

	res, err := p.extractor.FromDocument(ctx, content, loc, format)
	if err != nil {
		return fail(err)
	}
	if res.Text.Empty() {
		return fail(common.NewUnreadableDocument("Could not extract text from document", nil))
	}

	data := p.parse(ctx, docType, res.Text.Flat)

	p.logger.Info("pipeline.extract.ok", "doc_type", docType, "method", res.Method,
		"chars", len(res.Text.Flat), "elapsed_ms", time.Since(start).Milliseconds())
	return ok(data)
}

// ExtractMilestones extracts a milestone schedule from a spreadsheet or PDF.
// Spreadsheets are tried with the structural parser first; only sheets without
// a recognizable header row are handed to the model.
func (p *Pipeline) ExtractMilestones(ctx context.Context, fileURL string) Result {
	start := time.Now()
	p.logger.Info("pipeline.milestones.start", "file_url", fileURL)

	loc, err := storage.ParseLocator(fileURL)
	if err != nil {
		return fail(err)
	}
	format := loc.Format()
	if format != constants.SPREADSHEET && format != constants.PDF {
		return fail(common.NewUnsupportedFormat(
			fmt.Sprintf("Unsupported file type for milestones: %s", loc.Ext())))
	}

	content, err := p.resolver.Fetch(ctx, loc)
	if err != nil {
		return fail(err)
	}

	var milestones []entity.Milestone
	switch format {
	case constants.SPREADSHEET:
		milestones, err = p.milestonesFromSheet(ctx, content)
	case constants.PDF:
		var res extract.Result
		res, err = p.extractor.FromDocument(ctx, content, loc, format)
		if err == nil {
			if res.Text.Empty() {
				err = common.NewUnreadableDocument("Could not extract text from document", nil)
			} else {
				milestones = p.milestonesFromModel(ctx, res.Text.Flat)
			}
		}
	}
	if err != nil {
		return fail(err)
	}

	p.logger.Info("pipeline.milestones.ok", "milestones", len(milestones),
		"elapsed_ms", time.Since(start).Milliseconds())
	return ok(entity.MilestoneList{Milestones: milestones})
}

// ExtractFromBytes runs extraction on uploaded content. There is no object
// reference behind uploads, so formats that need the OCR service (images) are
// rejected and PDFs get direct extraction only. Uploads always parse with the
// model, milestone uploads included; the structural sheet parser is reserved
// for the milestone endpoint.
func (p *Pipeline) ExtractFromBytes(ctx context.Context, content []byte, filename string, docType constants.DocumentType) Result {
	start := time.Now()
	p.logger.Info("pipeline.upload.start", "doc_type", docType, "filename", filename, "bytes", len(content))

	ext := strings.ToLower(path.Ext(filename))
	format := constants.MapExtToFormat(ext)
	if format == "" || format == constants.IMAGE {
		return fail(common.NewUnsupportedFormat(fmt.Sprintf("Unsupported file type: %s", ext)))
	}

	res, err := p.extractor.FromBytes(ctx, content, format)
	if err != nil {
		return fail(err)
	}
	if res.Text.Empty() {
		return fail(common.NewUnreadableDocument("Could not extract text from document", nil))
	}

	data := p.parse(ctx, docType, res.Text.Flat)

	p.logger.Info("pipeline.upload.ok", "doc_type", docType, "method", res.Method,
		"elapsed_ms", time.Since(start).Milliseconds())
	return ok(data)
}

// locate parses a file URL and rejects unsupported extensions before any
// network round trip.
func (p *Pipeline) locate(fileURL string) (storage.Locator, constants.Format, error) {
	loc, err := storage.ParseLocator(fileURL)
	if err != nil {
		return storage.Locator{}, "", err
	}
	format := loc.Format()
	if format == "" {
		return storage.Locator{}, "", common.NewUnsupportedFormat(
			fmt.Sprintf("Unsupported file type: %s", loc.Ext()))
	}
	return loc, format, nil
}

// parse dispatches to the model and masks its failures: a transport or schema
// failure yields the null-filled record with zero confidence, logged but not
// surfaced as a request failure.
func (p *Pipeline) parse(ctx context.Context, docType constants.DocumentType, text string) any {
	switch docType {
	case constants.Invoice:
		inv, err := p.parser.ParseInvoice(ctx, text)
		if err != nil {
			p.logger.Warn("pipeline.parse.fallback", "doc_type", docType, "kind", common.KindOf(err), "error", err)
		}
		inv.RawText = truncate(text, rawTextLimit)
		return inv
	case constants.Milestone:
		return entity.MilestoneList{
			Milestones: p.milestonesFromModel(ctx, text),
			RawText:    truncate(text, rawTextLimit),
		}
	default:
		po, err := p.parser.ParsePurchaseOrder(ctx, text)
		if err != nil {
			p.logger.Warn("pipeline.parse.fallback", "doc_type", docType, "kind", common.KindOf(err), "error", err)
		}
		po.RawText = truncate(text, rawTextLimit)
		return po
	}
}

// milestonesFromSheet tries the structural parser first and delegates to the
// model only when no header row was recognized.
func (p *Pipeline) milestonesFromSheet(ctx context.Context, content []byte) ([]entity.Milestone, error) {
	milestones, headerFound, err := tabular.ParseMilestones(content, p.logger)
	if err != nil {
		return nil, err
	}
	if headerFound {
		return milestones, nil
	}

	res, err := p.extractor.FromBytes(ctx, content, constants.SPREADSHEET)
	if err != nil {
		return nil, err
	}
	if res.Text.Empty() {
		return nil, common.NewUnreadableDocument("Could not extract text from document", nil)
	}
	return p.milestonesFromModel(ctx, res.Text.Flat), nil
}

// milestonesFromModel parses milestones with the model, masking failures into
// the empty schedule.
func (p *Pipeline) milestonesFromModel(ctx context.Context, text string) []entity.Milestone {
	milestones, err := p.parser.ParseMilestones(ctx, text)
	if err != nil {
		p.logger.Warn("pipeline.parse.fallback", "doc_type", constants.Milestone, "kind", common.KindOf(err), "error", err)
	}
	if milestones == nil {
		milestones = []entity.Milestone{}
	}
	return milestones
}

// truncate caps s at limit bytes, backing up so a multi-byte rune is never
// split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

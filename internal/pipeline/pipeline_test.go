package pipeline

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/entity"
	"github.com/infradyn/docextract/internal/extract"
	"github.com/infradyn/docextract/internal/storage"
)

type fakeFetcher struct {
	content []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(context.Context, storage.Locator) ([]byte, error) {
	f.calls++
	return f.content, f.err
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) result() (extract.Result, error) {
	f.calls++
	if f.err != nil {
		return extract.Result{}, f.err
	}
	return extract.Result{Text: extract.Text{Segments: []string{f.text}, Flat: f.text}, Method: "pdf-text"}, nil
}

func (f *fakeExtractor) FromBytes(context.Context, []byte, constants.Format) (extract.Result, error) {
	return f.result()
}

func (f *fakeExtractor) FromDocument(context.Context, []byte, storage.Locator, constants.Format) (extract.Result, error) {
	return f.result()
}

type fakeParser struct {
	po         entity.PurchaseOrder
	invoice    entity.Invoice
	milestones []entity.Milestone
	err        error

	poCalls        int
	invoiceCalls   int
	milestoneCalls int
	gotText        string
}

func (f *fakeParser) ParsePurchaseOrder(_ context.Context, text string) (entity.PurchaseOrder, error) {
	f.poCalls++
	f.gotText = text
	return f.po, f.err
}

func (f *fakeParser) ParseInvoice(_ context.Context, text string) (entity.Invoice, error) {
	f.invoiceCalls++
	f.gotText = text
	return f.invoice, f.err
}

func (f *fakeParser) ParseMilestones(_ context.Context, text string) ([]entity.Milestone, error) {
	f.milestoneCalls++
	f.gotText = text
	return f.milestones, f.err
}

func strPtr(s string) *string { return &s }

func newTestPipeline(fetcher *fakeFetcher, extractor *fakeExtractor, parser *fakeParser) *Pipeline {
	return New(fetcher, extractor, parser, nil)
}

func TestExtractPurchaseOrderUnsupportedExtension(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(fetcher, &fakeExtractor{}, &fakeParser{})

	res := p.ExtractPurchaseOrder(context.Background(), "https://files.example.com/notes.txt")

	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported file type: .txt", res.Error)
	assert.Equal(t, common.KindUnsupportedFormat, res.ErrorKind)
	assert.Zero(t, fetcher.calls, "unsupported extensions are rejected before any fetch")
}

func TestExtractPurchaseOrderHappyPath(t *testing.T) {
	parser := &fakeParser{po: entity.PurchaseOrder{
		PONumber:   strPtr("PO-1001"),
		Milestones: []entity.Milestone{},
		BOQItems:   []entity.BOQItem{},
		Confidence: 0.9,
	}}
	p := newTestPipeline(
		&fakeFetcher{content: []byte("%PDF")},
		&fakeExtractor{text: "PURCHASE ORDER PO-1001\nTotal: 25,000 USD"},
		parser,
	)

	res := p.ExtractPurchaseOrder(context.Background(), "store://contracts/po.pdf")

	require.True(t, res.Success)
	assert.Empty(t, res.Error)

	po, okCast := res.Data.(entity.PurchaseOrder)
	require.True(t, okCast)
	assert.Equal(t, "PO-1001", *po.PONumber)
	assert.Equal(t, "PURCHASE ORDER PO-1001\nTotal: 25,000 USD", po.RawText)
	assert.Equal(t, 1, parser.poCalls)
}

func TestExtractPurchaseOrderMasksModelFailure(t *testing.T) {
	parser := &fakeParser{
		po:  entity.EmptyPurchaseOrder(),
		err: common.NewMalformedModelResponse("model response was not valid JSON", nil),
	}
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: "some text"}, parser)

	res := p.ExtractPurchaseOrder(context.Background(), "store://contracts/po.pdf")

	// A flaky model never fails the request: the caller gets the null-filled
	// record with the raw text attached.
	require.True(t, res.Success)
	po, okCast := res.Data.(entity.PurchaseOrder)
	require.True(t, okCast)
	assert.Nil(t, po.PONumber)
	assert.Zero(t, po.Confidence)
	assert.Equal(t, "some text", po.RawText)
}

func TestExtractPurchaseOrderTruncatesRawText(t *testing.T) {
	long := strings.Repeat("z", rawTextLimit+500)
	parser := &fakeParser{po: entity.EmptyPurchaseOrder()}
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: long}, parser)

	res := p.ExtractPurchaseOrder(context.Background(), "store://contracts/po.pdf")
	require.True(t, res.Success)

	po := res.Data.(entity.PurchaseOrder)
	assert.Len(t, po.RawText, rawTextLimit)
	assert.Equal(t, long, parser.gotText, "the model sees the full text; only the attachment is capped")
}

func TestExtractInvoice(t *testing.T) {
	parser := &fakeParser{invoice: entity.Invoice{
		InvoiceNumber: strPtr("INV-9"),
		LineItems:     []entity.LineItem{},
	}}
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: "invoice body"}, parser)

	res := p.ExtractInvoice(context.Background(), "store://contracts/inv.pdf")

	require.True(t, res.Success)
	inv, okCast := res.Data.(entity.Invoice)
	require.True(t, okCast)
	assert.Equal(t, "INV-9", *inv.InvoiceNumber)
	assert.Equal(t, 1, parser.invoiceCalls)
	assert.Zero(t, parser.poCalls)
}

func TestExtractDocumentEmptyText(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: "   \n  "}, &fakeParser{})

	res := p.ExtractPurchaseOrder(context.Background(), "store://contracts/blank.pdf")

	assert.False(t, res.Success)
	assert.Equal(t, "Could not extract text from document", res.Error)
	assert.Equal(t, common.KindUnreadableDocument, res.ErrorKind)
}

func TestExtractDocumentFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: common.NewNotFound("object not found: contracts/po.pdf", nil)}
	p := newTestPipeline(fetcher, &fakeExtractor{}, &fakeParser{})

	res := p.ExtractPurchaseOrder(context.Background(), "store://contracts/po.pdf")

	assert.False(t, res.Success)
	assert.Equal(t, common.KindNotFound, res.ErrorKind)
}

func milestoneSheet(t *testing.T, withHeader bool) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if withHeader {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Milestone Description"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Payment %"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "Mobilization"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "Final Delivery"))
		require.NoError(t, f.SetCellValue("Sheet1", "B3", 90))
	} else {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Random notes"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "Nothing tabular here"))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractMilestonesStructuredSheet(t *testing.T) {
	parser := &fakeParser{}
	p := newTestPipeline(&fakeFetcher{content: milestoneSheet(t, true)}, &fakeExtractor{}, parser)

	res := p.ExtractMilestones(context.Background(), "store://contracts/schedule.xlsx")

	require.True(t, res.Success)
	list, okCast := res.Data.(entity.MilestoneList)
	require.True(t, okCast)
	require.Len(t, list.Milestones, 2)
	assert.Equal(t, "Mobilization", list.Milestones[0].Title)
	assert.Equal(t, 90.0, list.Milestones[1].PaymentPercentage)
	assert.Zero(t, parser.milestoneCalls, "a recognized schedule never reaches the model")
}

func TestExtractMilestonesUnstructuredSheetFallsBackToModel(t *testing.T) {
	parser := &fakeParser{milestones: []entity.Milestone{{Title: "From model", PaymentPercentage: 100}}}
	extractor := &fakeExtractor{text: "Random notes\nNothing tabular here"}
	p := newTestPipeline(&fakeFetcher{content: milestoneSheet(t, false)}, extractor, parser)

	res := p.ExtractMilestones(context.Background(), "store://contracts/schedule.xlsx")

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	require.Len(t, list.Milestones, 1)
	assert.Equal(t, "From model", list.Milestones[0].Title)
	assert.Equal(t, 1, parser.milestoneCalls)
}

func TestExtractMilestonesPDF(t *testing.T) {
	parser := &fakeParser{milestones: []entity.Milestone{{Title: "Handover", PaymentPercentage: 100}}}
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: "milestone schedule"}, parser)

	res := p.ExtractMilestones(context.Background(), "store://contracts/schedule.pdf")

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	require.Len(t, list.Milestones, 1)
}

func TestExtractMilestonesRejectsWordDocuments(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPipeline(fetcher, &fakeExtractor{}, &fakeParser{})

	res := p.ExtractMilestones(context.Background(), "store://contracts/schedule.docx")

	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported file type for milestones: .docx", res.Error)
	assert.Equal(t, common.KindUnsupportedFormat, res.ErrorKind)
	assert.Zero(t, fetcher.calls)
}

func TestExtractMilestonesMasksModelFailure(t *testing.T) {
	parser := &fakeParser{err: common.NewTransportError("model request failed", nil)}
	p := newTestPipeline(&fakeFetcher{content: []byte("%PDF")}, &fakeExtractor{text: "text"}, parser)

	res := p.ExtractMilestones(context.Background(), "store://contracts/schedule.pdf")

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	assert.NotNil(t, list.Milestones)
	assert.Empty(t, list.Milestones)
}

func TestExtractFromBytesUpload(t *testing.T) {
	parser := &fakeParser{po: entity.EmptyPurchaseOrder()}
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{text: "uploaded po text"}, parser)

	res := p.ExtractFromBytes(context.Background(), []byte("%PDF"), "po.pdf", constants.PurchaseOrder)

	require.True(t, res.Success)
	po := res.Data.(entity.PurchaseOrder)
	assert.Equal(t, "uploaded po text", po.RawText)
}

func TestExtractFromBytesRejectsImages(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, &fakeParser{})

	res := p.ExtractFromBytes(context.Background(), []byte("png"), "photo.png", constants.PurchaseOrder)

	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported file type: .png", res.Error)
	assert.Equal(t, common.KindUnsupportedFormat, res.ErrorKind)
}

func TestExtractFromBytesUnsupportedExtension(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, &fakeParser{})

	res := p.ExtractFromBytes(context.Background(), []byte("text"), "notes.txt", constants.Invoice)

	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported file type: .txt", res.Error)
}

func TestExtractFromBytesMilestonesCarriesRawText(t *testing.T) {
	parser := &fakeParser{milestones: []entity.Milestone{{Title: "Kickoff", PaymentPercentage: 20}}}
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{text: "pdf schedule text"}, parser)

	res := p.ExtractFromBytes(context.Background(), []byte("%PDF"), "schedule.pdf", constants.Milestone)

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	require.Len(t, list.Milestones, 1)
	assert.Equal(t, "pdf schedule text", list.RawText)
}

func TestExtractFromBytesMilestonesAcceptsWordDocuments(t *testing.T) {
	parser := &fakeParser{milestones: []entity.Milestone{{Title: "Acceptance", PaymentPercentage: 100}}}
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{text: "word doc schedule"}, parser)

	res := p.ExtractFromBytes(context.Background(), []byte("zip"), "schedule.docx", constants.Milestone)

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	require.Len(t, list.Milestones, 1)
	assert.Equal(t, "word doc schedule", list.RawText)
	assert.Equal(t, 1, parser.milestoneCalls)
}

func TestExtractFromBytesMilestonesBypassSheetHeuristic(t *testing.T) {
	// Uploads always parse with the model; the structural parser is for the
	// milestone endpoint only, so even a sheet with a recognizable header goes
	// to the model here.
	parser := &fakeParser{milestones: []entity.Milestone{{Title: "From model", PaymentPercentage: 100}}}
	extractor := &fakeExtractor{text: "Milestone Description | Payment %\nMobilization | 10"}
	p := newTestPipeline(&fakeFetcher{}, extractor, parser)

	res := p.ExtractFromBytes(context.Background(), milestoneSheet(t, true), "schedule.xlsx", constants.Milestone)

	require.True(t, res.Success)
	list := res.Data.(entity.MilestoneList)
	require.Len(t, list.Milestones, 1)
	assert.Equal(t, "From model", list.Milestones[0].Title)
	assert.Equal(t, 1, parser.milestoneCalls)
	assert.NotEmpty(t, list.RawText)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	s := strings.Repeat("a", rawTextLimit-1) + "é" + "tail"

	got := truncate(s, rawTextLimit)
	assert.LessOrEqual(t, len(got), rawTextLimit)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", rawTextLimit-1), got)
}

func TestExtractFromBytesEmptyDocxThroughRealExtractor(t *testing.T) {
	p := New(&fakeFetcher{}, extract.NewExtractor(nil, nil), &fakeParser{}, nil)

	res := p.ExtractFromBytes(context.Background(), []byte{}, "contract.docx", constants.PurchaseOrder)

	assert.False(t, res.Success)
	assert.Equal(t, "Could not extract text from document", res.Error)
	assert.Equal(t, common.KindUnreadableDocument, res.ErrorKind)
}

func TestExtractFromBytesEmptyText(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{text: ""}, &fakeParser{})

	res := p.ExtractFromBytes(context.Background(), []byte("%PDF"), "blank.pdf", constants.PurchaseOrder)

	assert.False(t, res.Success)
	assert.Equal(t, "Could not extract text from document", res.Error)
	assert.Equal(t, common.KindUnreadableDocument, res.ErrorKind)
}

package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infradyn/docextract/internal/common"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Purchase Order </w:t></w:r><w:r><w:t>PO-1001</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Payment terms: Net 30</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestWordDocText(t *testing.T) {
	text, err := WordDocText(buildDocx(t, sampleDocumentXML))
	require.NoError(t, err)

	// Runs within a paragraph concatenate; empty paragraphs are dropped.
	require.Len(t, text.Segments, 2)
	assert.Equal(t, "Purchase Order PO-1001", text.Segments[0])
	assert.Equal(t, "Payment terms: Net 30", text.Segments[1])
	assert.Equal(t, "Purchase Order PO-1001\nPayment terms: Net 30", text.Flat)
}

func TestWordDocTextMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<styles/>"))
	require.NoError(t, zw.Close())

	_, err = WordDocText(buf.Bytes())
	require.Error(t, err)
	assert.Equal(t, common.KindUnreadableDocument, common.KindOf(err))
}

func TestWordDocTextGarbage(t *testing.T) {
	_, err := WordDocText([]byte("definitely not a zip archive"))
	require.Error(t, err)
	assert.Equal(t, common.KindUnreadableDocument, common.KindOf(err))
}

func TestWordDocTextMalformedXML(t *testing.T) {
	_, err := WordDocText(buildDocx(t, "<w:document><unclosed"))
	require.Error(t, err)
	assert.Equal(t, common.KindUnreadableDocument, common.KindOf(err))
}

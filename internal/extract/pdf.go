package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/infradyn/docextract/internal/common"
)

// PDFText extracts per-page text from a native-text PDF, joining pages with a
// blank-line separator. Corrupt or encrypted streams fail with
// UnreadableDocument; pages that individually fail to decode are skipped.
func PDFText(content []byte) (_ Text, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = common.NewUnreadableDocument("Could not extract text from document",
				fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if rerr != nil {
		return Text{}, common.NewUnreadableDocument("Could not extract text from document", rerr)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}

	return newText(pages, "\n\n"), nil
}

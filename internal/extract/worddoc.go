package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/infradyn/docextract/internal/common"
)

// WordDocText extracts every non-empty paragraph of a .docx document, one per
// line in document order. Empty paragraphs are dropped, not kept as blank
// lines. The OOXML container is a zip archive holding word/document.xml.
func WordDocText(content []byte) (Text, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
			}
			docXML, err = io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
			}
			break
		}
	}
	if docXML == nil {
		return Text{}, common.NewUnreadableDocument("Could not extract text from document",
			fmt.Errorf("word/document.xml not found in archive"))
	}

	paragraphs, err := docxParagraphs(docXML)
	if err != nil {
		return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
	}
	return newText(paragraphs, "\n"), nil
}

// docxParagraphs streams the document XML, concatenating the <w:t> runs inside
// each <w:p>. Prefixes are resolved by the decoder so only local names matter.
func docxParagraphs(docXML []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var paragraphs []string
	var cur strings.Builder
	inParagraph := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				cur.Reset()
			case "t":
				if inParagraph {
					var text string
					if err := dec.DecodeElement(&text, &t); err != nil {
						return nil, fmt.Errorf("parse text run: %w", err)
					}
					cur.WriteString(text)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if p := cur.String(); strings.TrimSpace(p) != "" {
					paragraphs = append(paragraphs, p)
				}
				cur.Reset()
			}
		}
	}
	return paragraphs, nil
}

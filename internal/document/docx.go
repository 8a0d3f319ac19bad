package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// ExtractDOCX extracts text from a DOCX file, paragraph by paragraph.
//
// DOCX files are ZIP archives; the text lives in word/document.xml as runs
// inside paragraph elements. Paragraph numbers are 1-based and count every
// paragraph element in the document, so numbering stays stable even though
// empty paragraphs are skipped in the output.
func ExtractDOCX(path string) ([]Unit, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrExtraction, path, err)
	}
	defer reader.Close()

	var content []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening document.xml in %s: %v", ErrExtraction, path, err)
		}
		content, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading document.xml in %s: %v", ErrExtraction, path, err)
		}
		break
	}
	if content == nil {
		return nil, fmt.Errorf("%w: %s has no word/document.xml", ErrExtraction, path)
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing document.xml in %s: %v", ErrExtraction, path, err)
	}

	var units []Unit
	for i, para := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, run := range para.Runs {
			for _, text := range run.Text {
				sb.WriteString(text.Content)
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		units = append(units, Unit{Text: text, Paragraph: i + 1})
	}

	return units, nil
}

package manifest

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// A .docx file is an OPC zip archive; the body lives in
// word/document.xml as a sequence of <w:p> paragraphs containing
// <w:t> text runs.

// ErrNoDocumentBody is returned when the archive holds no
// word/document.xml entry.
var ErrNoDocumentBody = errors.New("docx: missing word/document.xml")

// ExtractDocxText reads a .docx file from disk and returns its plain
// text content, paragraphs joined by newlines.
func ExtractDocxText(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("docx: open %s: %w", path, err)
	}
	defer r.Close()

	return docxTextFromZip(&r.Reader)
}

// ExtractDocxBytes extracts plain text from in-memory .docx content,
// e.g. a decoded email attachment.
func ExtractDocxBytes(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("docx: read archive: %w", err)
	}

	return docxTextFromZip(zr)
}

func docxTextFromZip(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docx: open document body: %w", err)
		}
		defer rc.Close()

		return docxParagraphText(rc)
	}

	return "", ErrNoDocumentBody
}

func docxParagraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: decode document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("docx: decode text run: %w", err)
				}
				current.WriteString(text)
			case "tab":
				current.WriteByte('\t')
			case "br":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

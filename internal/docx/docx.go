// Package docx extracts text from word-processor archives (.docx and .odt).
// Both formats are ZIP containers holding one XML body document.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ExtractDocx pulls the text content out of a .docx buffer by walking
// word/document.xml. Returns the first heading (or first paragraph) as the
// title plus the concatenated body text.
func ExtractDocx(data []byte) (title, text string, err error) {
	body, err := readArchiveEntry(data, "word/document.xml")
	if err != nil {
		return "", "", err
	}
	return walkWordXML(body)
}

// ExtractODT pulls the text content out of an .odt buffer by walking
// content.xml.
func ExtractODT(data []byte) (title, text string, err error) {
	body, err := readArchiveEntry(data, "content.xml")
	if err != nil {
		return "", "", err
	}
	return walkODTXML(body)
}

func readArchiveEntry(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

func walkWordXML(body []byte) (string, string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var sb strings.Builder
	var title string
	var currentText strings.Builder
	var inParagraph bool
	var paragraphStyle string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				currentText.Reset()
				paragraphStyle = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paragraphStyle = attr.Value
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if title == "" && isHeadingStyle(paragraphStyle) {
					title = text
				}
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
	}

	text := sb.String()
	if text == "" {
		return "", "", fmt.Errorf("no text content in document")
	}
	if title == "" {
		title = firstLine(text)
	}
	return title, text, nil
}

func walkODTXML(body []byte) (string, string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var sb strings.Builder
	var title string
	var currentText strings.Builder
	var inText bool
	var inHeading bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "h": // <text:h>
				inText = true
				inHeading = true
				currentText.Reset()
			case "p": // <text:p>
				inText = true
				inHeading = false
				currentText.Reset()
			}

		case xml.CharData:
			if inText {
				currentText.Write(t)
			}

		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "h") && inText {
				inText = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if title == "" && (inHeading || sb.Len() == 0) {
					title = text
				}
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
	}

	text := sb.String()
	if text == "" {
		return "", "", fmt.Errorf("no text content in document")
	}
	if title == "" {
		title = firstLine(text)
	}
	return title, text, nil
}

// isHeadingStyle matches Word heading style names across localizations.
func isHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	if lower == "title" || lower == "subtitle" {
		return true
	}
	for _, prefix := range []string{"heading", "nagłówek", "naglowek", "titre"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		cut := 200
		// Back off to a rune boundary so multi-byte characters survive.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

package docx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func buildArchive(t *testing.T, entryName, xmlBody string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(entryName)
	if err != nil {
		t.Fatalf("create archive entry: %v", err)
	}
	if _, err := f.Write([]byte(xmlBody)); err != nil {
		t.Fatalf("write archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	body := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Uchwała Nr V/32/2024</w:t></w:r></w:p>
    <w:p><w:r><w:t>Rada Miejska uchwala, co następuje:</w:t></w:r></w:p>
    <w:p><w:r><w:t></w:t></w:r></w:p>
    <w:p><w:r><w:t>Paragraf 1.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	data := buildArchive(t, "word/document.xml", body)

	title, text, err := ExtractDocx(data)
	if err != nil {
		t.Fatalf("ExtractDocx failed: %v", err)
	}
	if title != "Uchwała Nr V/32/2024" {
		t.Errorf("expected heading as title, got %q", title)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 non-empty paragraphs, got %d: %q", len(lines), text)
	}
	if !strings.Contains(text, "Rada Miejska") {
		t.Errorf("body paragraph missing from text: %q", text)
	}
}

func TestExtractDocxNoHeading(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Protokół z sesji</w:t></w:r></w:p>
    <w:p><w:r><w:t>Obrady rozpoczęto o godzinie 10:00.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	data := buildArchive(t, "word/document.xml", body)

	title, _, err := ExtractDocx(data)
	if err != nil {
		t.Fatalf("ExtractDocx failed: %v", err)
	}
	if title != "Protokół z sesji" {
		t.Errorf("expected first paragraph as fallback title, got %q", title)
	}
}

func TestExtractODT(t *testing.T) {
	body := `<?xml version="1.0"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:body><office:text>
    <text:h text:outline-level="1">Zarządzenie Burmistrza</text:h>
    <text:p>W sprawie ogłoszenia konkursu.</text:p>
    <text:p></text:p>
    <text:p>Termin składania ofert upływa 15 maja.</text:p>
  </office:text></office:body>
</office:document-content>`
	data := buildArchive(t, "content.xml", body)

	title, text, err := ExtractODT(data)
	if err != nil {
		t.Fatalf("ExtractODT failed: %v", err)
	}
	if title != "Zarządzenie Burmistrza" {
		t.Errorf("expected heading as title, got %q", title)
	}
	if !strings.Contains(text, "konkursu") || !strings.Contains(text, "Termin") {
		t.Errorf("paragraphs missing from text: %q", text)
	}
}

func TestExtractDocxMissingEntry(t *testing.T) {
	data := buildArchive(t, "other.xml", "<doc/>")
	if _, _, err := ExtractDocx(data); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestExtractDocxNotAnArchive(t *testing.T) {
	if _, _, err := ExtractDocx([]byte("plain text, not a zip")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestExtractDocxEmptyDocument(t *testing.T) {
	body := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>  </w:t></w:r></w:p></w:body></w:document>`
	data := buildArchive(t, "word/document.xml", body)
	if _, _, err := ExtractDocx(data); err == nil {
		t.Error("expected error for document with no text content")
	}
}

func TestFirstLineKeepsRuneBoundary(t *testing.T) {
	// A leading ASCII byte shifts every two-byte rune onto an odd offset,
	// so a naive cut at byte 200 would land mid-rune.
	title := firstLine("x" + strings.Repeat("ł", 150) + "\nbody")
	if len(title) > 200 {
		t.Errorf("title not truncated, got %d bytes", len(title))
	}
	if !utf8.ValidString(title) {
		t.Errorf("truncated title is not valid UTF-8: %q", title)
	}
}

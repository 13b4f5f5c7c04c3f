// Package pdf handles PDF documents: embedded-text extraction, text-layer
// usability classification, and rasterization for the OCR path.
package pdf

import (
	"bytes"
	"io"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	apperrors "go-doc-ingest/internal/errors"
)

// Extraction is the result of pulling the embedded text layer out of a PDF.
// HasImages reports embedded image XObjects, which on an unusable text layer
// is the telltale of a scanned document.
type Extraction struct {
	Text      string
	PageCount int
	HasImages bool
}

// Extract reads a PDF buffer and pulls text from every page's content stream.
// An empty text layer is a valid result (the caller falls back to OCR), so
// only structural read failures return an error.
func Extract(data []byte) (*Extraction, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, apperrors.NewDecodeFailureError("failed to parse PDF structure", err)
	}

	result := &Extraction{
		PageCount: ctx.PageCount,
		HasImages: detectImageStreams(ctx),
	}

	var all strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if all.Len() > 0 {
			all.WriteByte('\n')
		}
		all.WriteString(pageText)
	}
	result.Text = all.String()
	return result, nil
}

func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return parseContentStream(data)
}

// detectImageStreams reports whether the PDF carries image XObjects, the
// usual signature of a scanned document.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// parseContentStream walks text-showing operators (Tj, TJ, ') and positioning
// operators (Td, TD, T*) in a decoded content stream.
func parseContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, text := range literalStrings(line) {
				sb.WriteString(text)
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, text := range literalStrings(line) {
				sb.WriteByte('\n')
				sb.WriteString(text)
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeWhitespace(sb.String())
}

// literalStrings collects the contents of parenthesised PDF string literals
// on a single operator line, with escape sequences decoded.
func literalStrings(line []byte) []string {
	var out []string
	depth := 0
	start := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++ // skip escaped char, including \( and \)
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				if text := decodeLiteral(line[start:i]); text != "" {
					out = append(out, text)
				}
				start = -1
			}
		}
	}
	return out
}

func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
// Non-printable runes are kept: the usability classifier needs to see them.
func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

package resume

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/amishk599/screener/internal/model"
)

// MaxResumeBytes caps how much of a file is read for text extraction.
const MaxResumeBytes = 10 << 20

type fileKind int

const (
	kindUnknown fileKind = iota
	kindPDF
	kindDocx
	kindText
)

var (
	markupTagRegex = regexp.MustCompile(`<[^>]*>`)
	paragraphEnd   = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
)

// ExtractText reads the file and returns its plain text. Formats it cannot
// read, oversized files and files without text yield model.ErrUnsupportedFile.
func ExtractText(ctx context.Context, f model.UploadedFile) (string, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxResumeBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > MaxResumeBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", model.ErrUnsupportedFile, f.Name, MaxResumeBytes)
	}

	var text string
	switch detectKind(f.Name, data) {
	case kindPDF:
		text, err = extractPDFText(data)
	case kindDocx:
		text, err = extractDocxText(data)
	case kindText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8 text", model.ErrUnsupportedFile, f.Name)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s has an unknown format", model.ErrUnsupportedFile, f.Name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", model.ErrUnsupportedFile, f.Name, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content found in %s", model.ErrUnsupportedFile, f.Name)
	}
	return text, nil
}

func detectKind(name string, data []byte) fileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return kindPDF
	case ".docx":
		return kindDocx
	case ".txt", ".md", ".text":
		return kindText
	case ".doc":
		// Legacy binary Word documents are not readable.
		return kindUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return kindPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return kindDocx
	case strings.HasPrefix(http.DetectContentType(data), "text/plain"):
		return kindText
	}
	return kindUnknown
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripMarkup(doc.Editable().GetContent()), nil
}

// stripMarkup turns WordprocessingML into plain text: paragraph ends become
// newlines, every other tag is dropped and entities are unescaped.
func stripMarkup(content string) string {
	withBreaks := paragraphEnd.ReplaceAllString(content, "\n")
	plain := markupTagRegex.ReplaceAllString(withBreaks, "")
	return html.UnescapeString(plain)
}

// CleanText trims every line and drops empty ones.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

package pdfcheck

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Limits bounds an uploaded PDF.
type Limits struct {
	MaxFileSizeMB    int
	MinPages         int
	MaxPages         int
	DocumentTypeName string
}

var ResumeLimits = Limits{
	MaxFileSizeMB:    5,
	MinPages:         1,
	MaxPages:         5,
	DocumentTypeName: "resume",
}

// Result is the outcome of Validate. Error is a user-facing reason when Valid is false.
type Result struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// Validate checks size, header and page count of content.
func Validate(content []byte, limits Limits) Result {
	result := Result{FileSize: int64(len(content))}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result
	}

	pageCount, err := PageCount(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result
	}
	result.PageCount = pageCount

	if pageCount < max(limits.MinPages, 1) {
		result.Error = "PDF has no pages"
		return result
	}
	if limits.MaxPages > 0 && pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages for a %s",
			pageCount, limits.MaxPages, limits.DocumentTypeName)
		return result
	}

	result.Valid = true
	return result
}

// PageCount parses content and returns its number of pages.
func PageCount(content []byte) (int, error) {
	content = trimTrailingGarbage(content)
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader.NumPage(), nil
}

// trimTrailingGarbage cuts anything after the last %%EOF marker.
func trimTrailingGarbage(content []byte) []byte {
	eof := []byte("%%EOF")
	last := bytes.LastIndex(content, eof)
	if last == -1 {
		return content
	}
	end := last + len(eof)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}

// Package document extracts plain text from uploaded resume files. PDF text
// comes out of ledongthuc/pdf; DOCX is unpacked directly from the zip
// container's word/document.xml. All extracted text passes through the same
// normalization before it is handed to the generation backend.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
)

// MaxUploadBytes caps resume uploads.
const MaxUploadBytes = 5 << 20

// MinExtractedChars is the threshold below which an extraction is treated as
// failed — scanned PDFs without a text layer typically yield almost nothing.
const MinExtractedChars = 100

// File types recognized by DetectType.
const (
	TypePDF     = "pdf"
	TypeDOCX    = "docx"
	TypeDOC     = "doc"
	TypeTXT     = "txt"
	TypeUnknown = ""
)

// DetectType classifies a file by its extension, case-insensitively.
// Legacy .doc is recognized but not extractable.
func DetectType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return TypePDF
	case strings.HasSuffix(lower, ".docx"):
		return TypeDOCX
	case strings.HasSuffix(lower, ".doc"):
		return TypeDOC
	case strings.HasSuffix(lower, ".txt"):
		return TypeTXT
	}
	return TypeUnknown
}

// ValidateSize rejects uploads over MaxUploadBytes.
func ValidateSize(size int64) error {
	if size > MaxUploadBytes {
		return apperror.ValidationFailed("resume", "File size must be under 5MB")
	}
	return nil
}

// Extract pulls plain text from the uploaded file based on its detected
// type. It fails when the type is unsupported or the extracted text is too
// short to be a usable resume.
func Extract(filename string, content []byte) (string, error) {
	var text string
	var err error

	switch DetectType(filename) {
	case TypePDF:
		text, err = ExtractPDF(content)
	case TypeDOCX:
		text, err = ExtractDOCX(content)
	case TypeTXT:
		text = Normalize(string(content))
	case TypeDOC:
		return "", apperror.ValidationFailed("resume", "Legacy .doc files are not supported; please convert to PDF or DOCX")
	default:
		return "", apperror.ValidationFailed("resume", "Unsupported file type; please upload a PDF, DOCX or TXT file")
	}
	if err != nil {
		return "", err
	}

	if len(text) < MinExtractedChars {
		return "", apperror.ValidationFailed("resume", "Could not extract enough text from the file; it may be scanned or empty")
	}
	return text, nil
}

// ExtractPDF extracts the text layer of a PDF.
func ExtractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("document: parsing PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("document: extracting PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("document: reading PDF text: %w", err)
	}
	return Normalize(buf.String()), nil
}

// docxDocument mirrors the parts of word/document.xml that carry text: runs
// of text inside paragraphs. Paragraph boundaries become newlines.
type docxDocument struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// ExtractDOCX extracts paragraph text from a DOCX container.
func ExtractDOCX(content []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("document: opening DOCX container: %w", err)
	}

	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("document: opening document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("document: reading document.xml: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("document: DOCX container has no word/document.xml")
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", fmt.Errorf("document: parsing document.xml: %w", err)
	}

	var sb strings.Builder
	for _, p := range doc.Body.Paragraphs {
		for _, r := range p.Runs {
			sb.WriteString(r.Text)
		}
		sb.WriteByte('\n')
	}
	return Normalize(sb.String()), nil
}

var (
	blankRuns = regexp.MustCompile(`\n\s*\n`)
	spaceRuns = regexp.MustCompile(` +`)
)

// Normalize cleans extracted text: blank-line runs collapse to one blank
// line, space runs to a single space, NUL bytes are dropped and the private
// bullet glyph some PDF exporters emit becomes a real bullet.
func Normalize(text string) string {
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "", "•")
	return strings.TrimSpace(text)
}

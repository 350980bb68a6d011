// Package extract turns raw document bytes into plain text.
//
// Supported formats:
//   - txt: plain text (UTF-8 validated, whitespace normalized)
//   - pdf: PDF text extraction via pdfcpu content-stream decoding
//   - docx: Microsoft Word, word/document.xml inside the zip container
//   - epub: EPUB, XHTML chapters in OPF spine order
//
// Extraction is a pure transformation of bytes to text: no temp files
// survive a call, failures come back as typed errors, and nothing retries.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/observability"
)

// Extractor extracts plain text from document bytes.
type Extractor struct {
	logger *observability.Logger
}

// New creates an Extractor.
func New(logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{logger: logger.WithComponent("extract")}
}

// Result carries extracted text plus format-level metadata.
type Result struct {
	Text    string
	Format  domain.DocumentFormat
	Quality *Quality // populated for PDF sources only
}

// Extract returns the plain text of fileBytes interpreted as declaredFormat.
// An unrecognized format yields an unsupported-format error; a file that
// cannot be parsed as its declared format yields a parse-failure error.
func (e *Extractor) Extract(ctx context.Context, fileBytes []byte, declaredFormat string) (*Result, error) {
	format := domain.DocumentFormat(strings.ToLower(strings.TrimSpace(declaredFormat)))

	if format == domain.FormatAuto {
		sniffed, err := Sniff(fileBytes)
		if err != nil {
			return nil, err
		}
		format = sniffed
	}

	e.logger.Debug().
		Str("format", string(format)).
		Int("bytes", len(fileBytes)).
		Msg("extracting document")

	var (
		text    string
		quality *Quality
		err     error
	)

	switch format {
	case domain.FormatTXT:
		text, err = extractText(fileBytes)
	case domain.FormatPDF:
		text, quality, err = extractPDF(fileBytes)
	case domain.FormatDOCX:
		text, err = extractDOCX(fileBytes)
	case domain.FormatEPUB:
		text, err = extractEPUB(fileBytes)
	default:
		return nil, domain.UnsupportedFormatError(fmt.Sprintf("unsupported format %q", declaredFormat))
	}

	if err != nil {
		if domain.IsKind(err, domain.KindParseFailure) {
			return nil, err
		}
		return nil, domain.ParseFailureError(fmt.Sprintf("extract %s", format), err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, domain.ParseFailureError(fmt.Sprintf("no text content found in %s document", format), nil)
	}

	return &Result{Text: text, Format: format, Quality: quality}, nil
}

// SupportedFormats returns the declared-format tags the extractor accepts.
func SupportedFormats() []string {
	return []string{"txt", "pdf", "docx", "epub"}
}

// Sniff determines the document format from magic bytes. ZIP containers are
// disambiguated into docx vs epub by their entries; anything that is valid
// UTF-8 falls back to plain text.
func Sniff(fileBytes []byte) (domain.DocumentFormat, error) {
	if len(fileBytes) == 0 {
		return "", domain.ParseFailureError("empty file", nil)
	}
	if bytes.HasPrefix(fileBytes, []byte("%PDF")) {
		return domain.FormatPDF, nil
	}
	if bytes.HasPrefix(fileBytes, []byte("PK\x03\x04")) {
		kind, err := sniffZipKind(fileBytes)
		if err != nil {
			return "", domain.ParseFailureError("unrecognized zip container", err)
		}
		return kind, nil
	}
	return domain.FormatTXT, nil
}

// sniffZipKind inspects a ZIP container's entries to tell docx from epub.
func sniffZipKind(fileBytes []byte) (domain.DocumentFormat, error) {
	zr, err := zip.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return domain.FormatDOCX, nil
		case "META-INF/container.xml", "mimetype":
			if f.Name == "mimetype" {
				rc, err := f.Open()
				if err != nil {
					continue
				}
				mt := make([]byte, 64)
				n, _ := rc.Read(mt)
				rc.Close()
				if !strings.Contains(string(mt[:n]), "epub") {
					continue
				}
			}
			return domain.FormatEPUB, nil
		}
	}
	return "", fmt.Errorf("zip archive is neither docx nor epub")
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	ExtractFromURL(ctx context.Context, fileURL string) (string, error)
	ExtractFromBytes(data []byte) (string, error)
}

type pdfParserService struct {
	httpClient *http.Client
}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractFromURL fetches the PDF and extracts its plain text. A non-200
// response or an unparseable byte stream yields an ExtractionError.
func (p *pdfParserService) ExtractFromURL(ctx context.Context, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("build request: %w", err)}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("fetch pdf: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ExtractionError{Cause: fmt.Errorf("fetch pdf: unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("read pdf body: %w", err)}
	}

	slog.Debug("pdf fetched", "url", fileURL, "bytes", len(data))

	return p.ExtractFromBytes(data)
}

// ExtractFromBytes runs the PDF text extraction over an in-memory document.
func (p *pdfParserService) ExtractFromBytes(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("open pdf: %w", err)}
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, the rest may still be useful.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", &ExtractionError{Cause: fmt.Errorf("no text content found in pdf")}
	}

	return text, nil
}

// CleanText trims the extraction output and collapses blank lines.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

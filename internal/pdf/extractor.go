package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Page holds everything extracted from one PDF page. Images and Tables
// are optional blocks produced by upstream OCR / table detection; the
// chunker turns them into image and table chunks on the same page.
type Page struct {
	Number   int
	Text     string
	Headings []string
	Images   []ImageBlock
	Tables   []TableBlock
}

// ImageBlock is an OCR-recognized text region.
type ImageBlock struct {
	BboxID     string
	Text       string
	Confidence float64
}

// TableBlock is a detected table with a header row and data rows.
type TableBlock struct {
	BboxID  string
	Headers []string
	Rows    [][]string
}

// ExtractPages pulls per-page plain text out of raw PDF bytes. Page
// numbers are 1-based. Pages that fail text extraction are kept with
// empty text so page numbering stays aligned with the source document.
func ExtractPages(ctx context.Context, data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	total := reader.NumPage()
	logger := logutil.GetLogger(ctx)
	pages := make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		page := Page{Number: num}
		p := reader.Page(num)
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				logger.Warn("page text extraction failed", zap.Int("page", num), zap.Error(err))
			} else {
				page.Text = text
				page.Headings = extractHeadings(text)
			}
		}
		pages = append(pages, page)
	}
	logger.Info("pdf extracted", zap.Int("pages", len(pages)))
	return pages, nil
}

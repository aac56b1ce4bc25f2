package pdf

import (
	"fmt"
	"strings"

	"github.com/xxxsen/crambrain/internal/model"
)

const (
	DefaultMaxChunkChars = 500
	maxTableRows         = 5

	imageMarker = "[IMAGE]"
	tableMarker = "[TABLE]"
)

// Chunker splits a page into bounded chunks. Chunks never cross page
// boundaries; ids are deterministic for a given (doc, page, type,
// position) so re-running ingestion upserts the same rows.
type Chunker struct {
	maxChars int
}

func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	return &Chunker{maxChars: maxChars}
}

// ChunkPage produces the ordered chunk sequence for one page: sentence
// buffers for the page text, then one chunk per OCR image block, then
// one per table block.
func (c *Chunker) ChunkPage(docID string, page Page) []model.Chunk {
	var chunks []model.Chunk

	sentences := splitSentences(page.Text)
	var buf []sentenceSpan
	var bufLen int

	flush := func() {
		if len(buf) == 0 {
			return
		}
		parts := make([]string, 0, len(buf))
		for _, s := range buf {
			parts = append(parts, s.text)
		}
		text := strings.Join(parts, " ")
		seq := len(chunks)
		chunks = append(chunks, model.Chunk{
			ChunkID:   chunkID(docID, page.Number, model.ChunkTypeText, seq),
			DocID:     docID,
			Page:      page.Number,
			ChunkType: model.ChunkTypeText,
			Text:      text,
			CharStart: buf[0].start,
			CharEnd:   buf[len(buf)-1].end,
			Headings:  page.Headings,
			Metadata: map[string]interface{}{
				"word_count": len(strings.Fields(text)),
				"char_count": len(text),
			},
		})
		buf = nil
		bufLen = 0
	}

	for _, sentence := range sentences {
		added := len(sentence.text)
		if bufLen > 0 {
			added++ // joining space
		}
		if bufLen > 0 && bufLen+added > c.maxChars {
			flush()
			added = len(sentence.text)
		}
		buf = append(buf, sentence)
		bufLen += added
	}
	flush()

	for i, img := range page.Images {
		text := strings.TrimSpace(img.Text)
		if text == "" {
			continue
		}
		meta := map[string]interface{}{"confidence": img.Confidence}
		if img.BboxID != "" {
			meta["bbox_id"] = img.BboxID
		}
		chunks = append(chunks, model.Chunk{
			ChunkID:   chunkID(docID, page.Number, model.ChunkTypeImage, i),
			DocID:     docID,
			Page:      page.Number,
			ChunkType: model.ChunkTypeImage,
			Text:      imageMarker + " " + text,
			Metadata:  meta,
		})
	}

	for i, table := range page.Tables {
		text := formatTable(table)
		if text == "" {
			continue
		}
		meta := map[string]interface{}{"rows": len(table.Rows)}
		if table.BboxID != "" {
			meta["bbox_id"] = table.BboxID
		}
		chunks = append(chunks, model.Chunk{
			ChunkID:   chunkID(docID, page.Number, model.ChunkTypeTable, i),
			DocID:     docID,
			Page:      page.Number,
			ChunkType: model.ChunkTypeTable,
			Text:      tableMarker + " " + text,
			Metadata:  meta,
		})
	}

	return chunks
}

func chunkID(docID string, page int, chunkType model.ChunkType, seq int) string {
	return fmt.Sprintf("%s:%d:%s:%d", docID, page, chunkType, seq)
}

// formatTable renders the header row plus at most maxTableRows data
// rows, pipe-delimited.
func formatTable(table TableBlock) string {
	var parts []string
	if len(table.Headers) > 0 {
		parts = append(parts, "Headers: "+strings.Join(table.Headers, " | "))
	}
	rows := table.Rows
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		parts = append(parts, strings.Join(row, " | "))
	}
	return strings.Join(parts, "\n")
}

type sentenceSpan struct {
	text  string
	start int
	end   int
}

// splitSentences cuts text on sentence-terminator runs, discarding
// empty fragments. Each span records the byte offsets of its trimmed
// content within the original page text.
func splitSentences(text string) []sentenceSpan {
	var spans []sentenceSpan
	segStart := 0
	flushSegment := func(end int) {
		seg := text[segStart:end]
		trimmed := strings.TrimSpace(seg)
		if trimmed != "" {
			lead := strings.Index(seg, trimmed)
			spans = append(spans, sentenceSpan{
				text:  trimmed,
				start: segStart + lead,
				end:   segStart + lead + len(trimmed),
			})
		}
	}
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if i > segStart {
				flushSegment(i)
			}
			segStart = i + 1
		}
	}
	if segStart < len(text) {
		flushSegment(len(text))
	}
	return spans
}

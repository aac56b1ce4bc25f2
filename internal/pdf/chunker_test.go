package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/model"
)

func TestChunkPage_SplitsAtMaxChars(t *testing.T) {
	chunker := NewChunker(20)
	page := Page{Number: 1, Text: "aaaa aaaa. bbbb bbbb. cccc cccc."}

	chunks := chunker.ChunkPage("doc", page)
	require.Len(t, chunks, 2)

	require.Equal(t, "aaaa aaaa bbbb bbbb", chunks[0].Text)
	require.Equal(t, "cccc cccc", chunks[1].Text)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk.Text), 20)
		require.Equal(t, model.ChunkTypeText, chunk.ChunkType)
		require.Equal(t, 1, chunk.Page)
	}
}

func TestChunkPage_CharSpansIndexIntoPageText(t *testing.T) {
	chunker := NewChunker(20)
	text := "aaaa aaaa. bbbb bbbb. cccc cccc."
	page := Page{Number: 1, Text: text}

	chunks := chunker.ChunkPage("doc", page)
	require.Len(t, chunks, 2)

	require.Equal(t, 0, chunks[0].CharStart)
	require.Equal(t, "bbbb bbbb", text[11:20])
	require.Equal(t, 20, chunks[0].CharEnd)
	require.Equal(t, "cccc cccc", text[chunks[1].CharStart:chunks[1].CharEnd])
}

func TestChunkPage_DeterministicIDs(t *testing.T) {
	chunker := NewChunker(0)
	page := Page{
		Number: 3,
		Text:   "First sentence. Second sentence.",
		Images: []ImageBlock{{BboxID: "b1", Text: "diagram of a cell", Confidence: 0.9}},
		Tables: []TableBlock{{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}},
	}

	first := chunker.ChunkPage("doc", page)
	second := chunker.ChunkPage("doc", page)
	require.Equal(t, first, second)

	require.Equal(t, "doc:3:text:0", first[0].ChunkID)
	require.Equal(t, "doc:3:image:0", first[1].ChunkID)
	require.Equal(t, "doc:3:table:0", first[2].ChunkID)
}

func TestChunkPage_ImageChunksOnTextlessPage(t *testing.T) {
	chunker := NewChunker(0)
	page := Page{
		Number: 2,
		Images: []ImageBlock{
			{BboxID: "b1", Text: "mitochondria labeled", Confidence: 0.8},
			{Text: "   ", Confidence: 0.5},
		},
	}

	chunks := chunker.ChunkPage("doc", page)
	require.Len(t, chunks, 1)
	require.Equal(t, model.ChunkTypeImage, chunks[0].ChunkType)
	require.Equal(t, "[IMAGE] mitochondria labeled", chunks[0].Text)
	require.Equal(t, "b1", chunks[0].Metadata["bbox_id"])
}

func TestChunkPage_TableTruncatesRows(t *testing.T) {
	chunker := NewChunker(0)
	rows := [][]string{
		{"r1", "x"}, {"r2", "x"}, {"r3", "x"}, {"r4", "x"}, {"r5", "x"}, {"r6", "x"}, {"r7", "x"},
	}
	page := Page{
		Number: 4,
		Tables: []TableBlock{{BboxID: "t1", Headers: []string{"name", "value"}, Rows: rows}},
	}

	chunks := chunker.ChunkPage("doc", page)
	require.Len(t, chunks, 1)
	require.True(t, strings.HasPrefix(chunks[0].Text, "[TABLE] Headers: name | value"))
	require.Contains(t, chunks[0].Text, "r5 | x")
	require.NotContains(t, chunks[0].Text, "r6")
	require.Equal(t, 7, chunks[0].Metadata["rows"])
	require.Equal(t, "t1", chunks[0].Metadata["bbox_id"])
}

func TestChunkPage_EmptyPage(t *testing.T) {
	chunker := NewChunker(0)
	require.Empty(t, chunker.ChunkPage("doc", Page{Number: 1}))
}

func TestChunkPage_KeepsPageHeadings(t *testing.T) {
	chunker := NewChunker(0)
	page := Page{Number: 5, Text: "Body text here.", Headings: []string{"Chapter 2: Cells"}}
	chunks := chunker.ChunkPage("doc", page)
	require.Len(t, chunks, 1)
	require.Equal(t, []string{"Chapter 2: Cells"}, chunks[0].Headings)
}

func TestSplitSentences_TracksOffsets(t *testing.T) {
	text := "  Hello world.  How are you?"
	spans := splitSentences(text)
	require.Len(t, spans, 2)
	require.Equal(t, "Hello world", spans[0].text)
	require.Equal(t, spans[0].text, text[spans[0].start:spans[0].end])
	require.Equal(t, "How are you", spans[1].text)
	require.Equal(t, spans[1].text, text[spans[1].start:spans[1].end])
}

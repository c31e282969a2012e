package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUppercaseLineIsTitle(t *testing.T) {
	blocks := ClassifyNoteContent("INTRODUCTION")
	require.Len(t, blocks, 1)
	assert.Equal(t, NoteBlock{Type: BlockTitle, Text: "INTRODUCTION"}, blocks[0])
}

func TestClassifyShortOrLetterlessLinesArePlain(t *testing.T) {
	blocks := ClassifyNoteContent("OK\n123\n???")
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Equal(t, BlockParagraph, b.Type, b.Text)
	}
}

func TestClassifyMixedNote(t *testing.T) {
	content := "NETWORK BASICS\r\n" +
		"A network links devices.\n" +
		"\n" +
		"https://cdn.example.com/diagram.PNG\n" +
		"1. Star\n" +
		"2.  Bus\n" +
		"- cheap\n" +
		"* simple\n" +
		"Closing words."

	blocks := ClassifyNoteContent(content)
	require.Len(t, blocks, 6)

	assert.Equal(t, NoteBlock{Type: BlockTitle, Text: "NETWORK BASICS"}, blocks[0])
	assert.Equal(t, NoteBlock{Type: BlockParagraph, Text: "A network links devices."}, blocks[1])
	assert.Equal(t, NoteBlock{Type: BlockImage, URL: "https://cdn.example.com/diagram.PNG"}, blocks[2])
	assert.Equal(t, NoteBlock{Type: BlockList, Ordered: true, Items: []string{"Star", "Bus"}}, blocks[3])
	assert.Equal(t, NoteBlock{Type: BlockList, Items: []string{"cheap", "simple"}}, blocks[4])
	assert.Equal(t, NoteBlock{Type: BlockParagraph, Text: "Closing words."}, blocks[5])
}

func TestClassifyBlankLineSplitsLists(t *testing.T) {
	blocks := ClassifyNoteContent("- a\n\n- b")
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"a"}, blocks[0].Items)
	assert.Equal(t, []string{"b"}, blocks[1].Items)
}

func TestClassifyNeverFails(t *testing.T) {
	assert.Nil(t, ClassifyNoteContent(""))
	assert.Empty(t, ClassifyNoteContent("\n\n   \n"))

	blocks := ClassifyNoteContent("http://x.test/not-an-image.pdf\n-no space bullet\n1.no space")
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Equal(t, BlockParagraph, b.Type)
	}
}

package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	BlockImage     = "image"
	BlockTitle     = "title"
	BlockList      = "list"
	BlockParagraph = "paragraph"
)

// NoteBlock is one display unit of a plain-text note.
type NoteBlock struct {
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	URL     string   `json:"url,omitempty"`
	Ordered bool     `json:"ordered,omitempty"`
	Items   []string `json:"items,omitempty"`
}

var (
	imageLine    = regexp.MustCompile(`(?i)^https?://.*\.(?:png|jpg|jpeg|gif|webp)$`)
	upperLetter  = regexp.MustCompile(`[A-Z]`)
	orderedLine  = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	bulletedLine = regexp.MustCompile(`^[-*]\s+(.*)$`)
	lineBreak    = regexp.MustCompile(`\r?\n`)
)

// ClassifyNoteContent splits a flat text blob into display blocks, one line at a time.
// Consecutive list lines of the same kind are merged into a single list block;
// anything unrecognised becomes a paragraph and blank lines are dropped.
func ClassifyNoteContent(content string) []NoteBlock {
	if content == "" {
		return nil
	}

	blocks := make([]NoteBlock, 0)
	var list *NoteBlock

	flush := func() {
		if list != nil {
			blocks = append(blocks, *list)
			list = nil
		}
	}
	appendItem := func(ordered bool, item string) {
		if list == nil || list.Ordered != ordered {
			flush()
			list = &NoteBlock{Type: BlockList, Ordered: ordered}
		}
		list.Items = append(list.Items, item)
	}

	for _, line := range lineBreak.Split(content, -1) {
		trimmed := strings.TrimSpace(line)

		if imageLine.MatchString(trimmed) {
			flush()
			blocks = append(blocks, NoteBlock{Type: BlockImage, URL: trimmed})
			continue
		}
		if isTitleLine(trimmed) {
			flush()
			blocks = append(blocks, NoteBlock{Type: BlockTitle, Text: trimmed})
			continue
		}
		if m := orderedLine.FindStringSubmatch(trimmed); m != nil {
			appendItem(true, m[2])
			continue
		}
		if m := bulletedLine.FindStringSubmatch(trimmed); m != nil {
			appendItem(false, m[1])
			continue
		}

		flush()
		if trimmed != "" {
			blocks = append(blocks, NoteBlock{Type: BlockParagraph, Text: trimmed})
		}
	}
	flush()

	return blocks
}

func isTitleLine(s string) bool {
	return utf8.RuneCountInString(s) > 2 && s == strings.ToUpper(s) && upperLetter.MatchString(s)
}

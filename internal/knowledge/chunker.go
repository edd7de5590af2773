package knowledge

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize bounds a chunk in bytes, sized well under the
// embedder's token budget.
const DefaultMaxChunkSize = 2048

// Chunker splits raw resource text into embeddable pieces. Splitting is
// deterministic: the same input always yields the same chunks.
//
// Strategy: split on blank lines first, then on sentence boundaries for
// paragraphs over the limit, then hard-split anything still too large at
// a rune boundary.
type Chunker struct {
	maxSize int
}

// NewChunker creates a Chunker. maxSize <= 0 selects DefaultMaxChunkSize.
func NewChunker(maxSize int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	return &Chunker{maxSize: maxSize}
}

// Chunk splits text into non-empty, whitespace-trimmed chunks no larger
// than the configured size. Empty or whitespace-only input yields nil.
func (c *Chunker) Chunk(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	for _, para := range splitParagraphs(text) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.maxSize {
			chunks = append(chunks, para)
			continue
		}
		chunks = append(chunks, c.chunkSentences(para)...)
	}
	return chunks
}

// chunkSentences packs sentences into chunks up to the size limit,
// hard-splitting any single sentence that exceeds it on its own.
func (c *Chunker) chunkSentences(para string) []string {
	var chunks []string
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
	}

	for _, sentence := range splitSentences(para) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if len(sentence) > c.maxSize {
			flush()
			chunks = append(chunks, c.hardSplit(sentence)...)
			continue
		}
		if buf.Len() > 0 && buf.Len()+1+len(sentence) > c.maxSize {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// hardSplit cuts s into maxSize pieces without splitting a UTF-8 rune.
func (c *Chunker) hardSplit(s string) []string {
	var parts []string
	for len(s) > c.maxSize {
		cut := c.maxSize
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = c.maxSize
		}
		part := strings.TrimSpace(s[:cut])
		if part != "" {
			parts = append(parts, part)
		}
		s = s[cut:]
	}
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// splitParagraphs splits on runs of blank lines.
func splitParagraphs(text string) []string {
	var paras []string
	lines := strings.Split(text, "\n")
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paras = append(paras, strings.Join(current, "\n"))
				current = current[:0]
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paras = append(paras, strings.Join(current, "\n"))
	}
	return paras
}

// splitSentences splits after terminal punctuation followed by space.
// Good enough for knowledge snippets; not a full sentence tokenizer.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?', '。', '！', '？':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				sentences = append(sentences, string(runes[start:i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

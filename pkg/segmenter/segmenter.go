// Package segmenter splits long-form text into chunks that a speech
// synthesizer can render one at a time without audible seams.
package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxLength is the chunk size used when callers do not pick one
	DefaultMaxLength = 300

	// MinChunkLength is the length below which a chunk is folded into the
	// chunk before it
	MinChunkLength = 80
)

// EdgeChars are stripped from both ends of every chunk. Quotes, brackets,
// colons, semicolons and dashes at a chunk boundary make the synthesizer
// reset the voice timbre.
const EdgeChars = "\"'“”‘’():;—–「」『』（）：；"

const (
	latinSentenceEnds = ".!?;:"
	wideSentenceEnds  = "。！？；："
	clauseDelimiters  = ",;:—–，；：、"
	closingMarks      = "\"'”’)]」』）"
	widePunctuation   = wideSentenceEnds + "，、"
)

// Options tunes a split
type Options struct {
	MaxLength int
	MinLength int
}

// DefaultOptions returns the options used by Split
func DefaultOptions() Options {
	return Options{
		MaxLength: DefaultMaxLength,
		MinLength: MinChunkLength,
	}
}

// Split breaks text into ordered chunks of at most maxLen runes.
// A single word longer than maxLen is emitted on its own.
func Split(text string, maxLen int) []string {
	opts := DefaultOptions()
	opts.MaxLength = maxLen
	return SplitWithOptions(text, opts)
}

// SplitWithOptions is Split with an explicit minimum chunk length
func SplitWithOptions(text string, opts Options) []string {
	maxLen := opts.MaxLength
	if maxLen < 1 {
		maxLen = 1
	}

	text = normalizeSpace(text)
	if text == "" {
		return []string{}
	}

	var spans []string
	for _, sentence := range splitSentences(text) {
		spans = append(spans, splitLong(sentence, maxLen)...)
	}

	chunks := make([]string, 0, len(spans))
	for _, packed := range join(spans, maxLen) {
		if cleaned := Clean(packed); cleaned != "" {
			chunks = append(chunks, cleaned)
		}
	}

	return mergeShort(chunks, maxLen, opts.MinLength)
}

// Clean trims whitespace and edge punctuation and collapses inner whitespace
func Clean(text string) string {
	text = strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(EdgeChars, r)
	})
	return normalizeSpace(text)
}

// Length reports the length of text the way the segmenter measures it
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences cuts text after sentence-final punctuation. Latin marks
// only count when followed by whitespace or the end of the text; full-width
// marks always end a sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		wide := strings.ContainsRune(wideSentenceEnds, runes[i])
		if !wide && !strings.ContainsRune(latinSentenceEnds, runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && strings.ContainsRune(closingMarks, runes[end]) {
			end++
		}
		if !wide && end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// splitLong breaks an oversized span at clause delimiters, falling back to
// word wrapping for clauses that still do not fit
func splitLong(span string, maxLen int) []string {
	if Length(span) <= maxLen {
		return []string{span}
	}

	var parts []string
	for _, piece := range join(splitClauses(span), maxLen) {
		if Length(piece) <= maxLen {
			parts = append(parts, piece)
			continue
		}
		parts = append(parts, wrapWords(piece, maxLen)...)
	}
	return parts
}

func splitClauses(span string) []string {
	var clauses []string
	var b strings.Builder

	for _, r := range span {
		b.WriteRune(r)
		if strings.ContainsRune(clauseDelimiters, r) {
			if c := strings.TrimSpace(b.String()); c != "" {
				clauses = append(clauses, c)
			}
			b.Reset()
		}
	}
	if c := strings.TrimSpace(b.String()); c != "" {
		clauses = append(clauses, c)
	}

	return clauses
}

// join greedily packs pieces into strings of at most maxLen runes. A piece
// that is longer than maxLen on its own is kept as it is.
func join(pieces []string, maxLen int) []string {
	var out []string
	var current string

	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if current == "" {
			current = piece
			continue
		}
		sep := separator(current)
		if Length(current)+len(sep)+Length(piece) <= maxLen {
			current = current + sep + piece
			continue
		}
		out = append(out, current)
		current = piece
	}
	if current != "" {
		out = append(out, current)
	}

	return out
}

// separator returns what goes between prev and the next piece: nothing after
// full-width punctuation, a single space otherwise
func separator(prev string) string {
	trimmed := strings.TrimRightFunc(prev, func(r rune) bool {
		return strings.ContainsRune(closingMarks, r)
	})
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	if strings.ContainsRune(widePunctuation, last) {
		return ""
	}
	return " "
}

// wrapWords hard-wraps text on word boundaries. Runs of Han characters have
// no spaces, so an oversized run breaks between characters.
func wrapWords(text string, maxLen int) []string {
	var words []string
	for _, field := range strings.Fields(text) {
		if Length(field) > maxLen && containsHan(field) {
			words = append(words, splitRunes(field, maxLen)...)
			continue
		}
		words = append(words, field)
	}
	return join(words, maxLen)
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// mergeShort folds chunks shorter than minLen into the previous chunk. The
// merge only happens when the result still fits maxLen; the first chunk
// never has anything to merge into.
func mergeShort(chunks []string, maxLen, minLen int) []string {
	merged := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		if n := len(merged); n > 0 && Length(chunk) < minLen {
			candidate := Clean(merged[n-1] + separator(merged[n-1]) + chunk)
			if Length(candidate) <= maxLen {
				merged[n-1] = candidate
				continue
			}
		}
		merged = append(merged, chunk)
	}

	return merged
}

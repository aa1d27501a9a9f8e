// Package chunker splits long input text into fragments small enough for a
// single extraction prompt.
package chunker

import (
	"math"
	"strings"

	"github.com/brunobiangulo/graphtext/contenthash"
)

// Chunking defaults.
const (
	DefaultMaxTokens = 1024
	DefaultOverlap   = 128

	// NoOverlap disables carrying trailing context between fragments.
	NoOverlap = -1
)

// Config controls the chunking behaviour.
type Config struct {
	MaxTokens int // Maximum estimated tokens per fragment.
	// Overlap is the token overlap between consecutive fragments. Zero
	// picks min(DefaultOverlap, MaxTokens/8); NoOverlap turns it off.
	Overlap int
}

// Fragment is one piece of split text.
type Fragment struct {
	Index      int    `json:"index"`
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
	Hash       string `json:"hash"`
}

// Chunker splits text into fragments.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
// Zero-value fields are replaced with sensible defaults.
func New(cfg Config) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	switch {
	case cfg.Overlap == 0:
		cfg.Overlap = min(DefaultOverlap, cfg.MaxTokens/8)
	case cfg.Overlap < 0:
		cfg.Overlap = 0
	}
	return &Chunker{cfg: cfg}
}

// Config returns the effective configuration after defaults.
func (c *Chunker) Config() Config { return c.cfg }

// Split breaks text into fragments of at most MaxTokens estimated tokens,
// splitting at paragraph and then sentence boundaries. Each fragment
// starts with up to Overlap tokens carried from the end of the previous
// one, shortened so the fragment still fits. A single sentence longer
// than MaxTokens becomes a fragment of its own. Blank input yields no
// fragments.
func (c *Chunker) Split(text string) []Fragment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := c.pack(text)
	frags := make([]Fragment, 0, len(parts))
	for _, p := range parts {
		frags = append(frags, Fragment{
			Index:      len(frags),
			Content:    p,
			TokenCount: EstimateTokens(p),
			Hash:       contenthash.Sum(p),
		})
	}
	return frags
}

func (c *Chunker) pack(text string) []string {
	if EstimateTokens(text) <= c.cfg.MaxTokens {
		return []string{strings.TrimSpace(text)}
	}

	b := builder{maxTokens: c.cfg.MaxTokens, overlap: c.cfg.Overlap}
	for _, para := range splitParagraphs(text) {
		if EstimateTokens(para) <= c.cfg.MaxTokens {
			b.add(para, "\n\n")
			continue
		}
		// Oversized paragraphs get fragments of their own, cut at sentences.
		b.cut()
		for _, sent := range splitSentences(para) {
			b.add(sent, " ")
		}
		b.cut()
	}
	b.cut()
	return b.out
}

// builder accumulates text units into fragments. Token counts are summed
// per unit, which never underestimates the count of the joined text.
type builder struct {
	maxTokens int
	overlap   int

	out    []string
	buf    strings.Builder
	tokens int
}

// add appends unit, first closing the current fragment if unit would not
// fit. A fresh fragment opens with the tail of the previous one, trimmed
// to whatever room unit leaves.
func (b *builder) add(unit, sep string) {
	n := EstimateTokens(unit)
	if b.buf.Len() > 0 && b.tokens+n > b.maxTokens {
		b.cut()
	}
	if b.buf.Len() == 0 && len(b.out) > 0 {
		room := min(b.overlap, b.maxTokens-n)
		if tail := extractOverlap(b.out[len(b.out)-1], room); tail != "" {
			b.buf.WriteString(tail)
			b.tokens = EstimateTokens(tail)
		}
	}
	if b.buf.Len() > 0 {
		b.buf.WriteString(sep)
	}
	b.buf.WriteString(unit)
	b.tokens += n
}

// cut closes the current fragment, if any.
func (b *builder) cut() {
	if b.buf.Len() == 0 {
		return
	}
	b.out = append(b.out, strings.TrimSpace(b.buf.String()))
	b.buf.Reset()
	b.tokens = 0
}

// EstimateTokens approximates the token count of text using a word-based
// heuristic: tokens ~ words * 1.3.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}

// splitParagraphs splits text on blank-line boundaries.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences splits after '.', '?' or '!' when followed by whitespace
// or the end of the text.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isSentenceEnd(text[i]) {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceEnd(c byte) bool { return c == '.' || c == '?' || c == '!' }

func isSpace(c byte) bool { return c == ' ' || c == '\n' || c == '\t' }

// extractOverlap returns the trailing words of text whose estimated token
// count is at most maxTokens.
func extractOverlap(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	words := strings.Fields(text)
	keep := min(int(float64(maxTokens)/1.3), len(words))
	return strings.Join(words[len(words)-keep:], " ")
}

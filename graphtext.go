// Package graphtext turns text into prompts for entity and relationship
// extraction and turns the model's answers back into graph records.
//
// The package never talks to a model. Callers send each Prompt to their
// generation backend and hand the raw response back to Parse or ParseJSON.
package graphtext

import (
	"log/slog"
	"strings"

	"github.com/brunobiangulo/graphtext/chunker"
	"github.com/brunobiangulo/graphtext/contenthash"
	"github.com/brunobiangulo/graphtext/graph"
	"github.com/brunobiangulo/graphtext/llm"
)

// Prompt is a rendered extraction prompt for one fragment of input text.
type Prompt struct {
	Fragment chunker.Fragment `json:"fragment"`
	// Text is the Llama 3.1 formatted prompt.
	Text string `json:"text"`
	// CacheKey identifies Text for response caching and deduplication.
	CacheKey string `json:"cache_key"`
}

// Pipeline builds extraction prompts and parses model responses. It holds
// no mutable state and is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	chunkr *chunker.Chunker
	logger *slog.Logger
}

// New creates a Pipeline. A zero chunk size and empty entity types are
// replaced with the values from DefaultConfig.
func New(cfg Config) (*Pipeline, error) {
	def := DefaultConfig()
	if cfg.MaxChunkTokens == 0 {
		cfg.MaxChunkTokens = def.MaxChunkTokens
	}
	if len(cfg.EntityTypes) == 0 {
		cfg.EntityTypes = def.EntityTypes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg: cfg,
		chunkr: chunker.New(cfg.chunkerConfig()),
		logger: logger,
	}, nil
}

// Prompts splits text into fragments and renders one extraction prompt
// per fragment.
func (p *Pipeline) Prompts(text string) []Prompt {
	frags := p.chunkr.Split(text)
	prompts := make([]Prompt, 0, len(frags))
	for _, f := range frags {
		msgs := graph.ExtractionMessages(f.Content, graph.PromptOptions{
			EntityTypes:         p.cfg.EntityTypes,
			TupleDelimiter:      p.cfg.TupleDelimiter,
			RecordDelimiter:     p.cfg.RecordDelimiter,
			CompletionDelimiter: p.cfg.CompletionDelimiter,
		})
		rendered := llm.FormatMessages(msgs)
		prompts = append(prompts, Prompt{
			Fragment: f,
			Text:     rendered,
			CacheKey: contenthash.Sum(rendered),
		})
	}
	p.logger.Debug("graphtext: prompts rendered", "fragments", len(prompts))
	return prompts
}

// Parse extracts the assistant's answer from a raw model response and reads
// entity and relationship records from it. Configured delimiters are used
// for parsing; unset ones are auto-detected.
func (p *Pipeline) Parse(prompt, fullResponse string) ([]graph.EntityRecord, []graph.RelationshipRecord) {
	answer := llm.ExtractAssistantResponse(prompt, fullResponse)
	if d := p.cfg.CompletionDelimiter; d != "" {
		answer = strings.ReplaceAll(answer, d, "")
	}
	return graph.ParseExtractionOutput(answer,
		graph.WithRecordDelimiter(p.cfg.RecordDelimiter),
		graph.WithTupleDelimiter(p.cfg.TupleDelimiter),
		graph.WithLogger(p.logger),
	)
}

// ParseResult is Parse followed by graph.NewExtractionResult.
func (p *Pipeline) ParseResult(prompt, fullResponse string) graph.ExtractionResult {
	return graph.NewExtractionResult(p.Parse(prompt, fullResponse))
}

// ParseJSON extracts the assistant's answer from a raw model response and
// decodes it as fenced JSON. Invalid JSON yields a *llm.ParseError.
func (p *Pipeline) ParseJSON(prompt, fullResponse string) (any, error) {
	return llm.ExtractJSON(llm.ExtractAssistantResponse(prompt, fullResponse))
}

package graphtext

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/brunobiangulo/graphtext/chunker"
	"github.com/brunobiangulo/graphtext/graph"
)

// Config holds all configuration for a Pipeline.
type Config struct {
	// Delimiters written into the extraction prompt. Empty values use the
	// literal placeholder tokens ("{tuple_delimiter}" etc.), which the
	// parser also auto-detects.
	TupleDelimiter      string `json:"tuple_delimiter" yaml:"tuple_delimiter" validate:"omitempty,nefield=RecordDelimiter"`
	RecordDelimiter     string `json:"record_delimiter" yaml:"record_delimiter"`
	CompletionDelimiter string `json:"completion_delimiter" yaml:"completion_delimiter"`

	// EntityTypes offered to the model. Defaults to organization, person,
	// geo and event.
	EntityTypes []string `json:"entity_types" yaml:"entity_types" validate:"dive,required"`

	// Chunking. A nil ChunkOverlap picks min(128, MaxChunkTokens/8); zero
	// disables overlap.
	MaxChunkTokens int  `json:"max_chunk_tokens" yaml:"max_chunk_tokens" validate:"gte=0"`
	ChunkOverlap   *int `json:"chunk_overlap,omitempty" yaml:"chunk_overlap,omitempty" validate:"omitempty,gte=0"`

	// Logger receives parser diagnostics. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-" validate:"-"`
}

// DefaultConfig returns a Config that prompts with placeholder delimiters
// and splits text into 1024-token fragments with 128 tokens of overlap.
func DefaultConfig() Config {
	return Config{
		EntityTypes:    graph.DefaultEntityTypes(),
		MaxChunkTokens: chunker.DefaultMaxTokens,
	}
}

// chunkerConfig maps the chunking fields onto chunker.Config.
func (c Config) chunkerConfig() chunker.Config {
	cc := chunker.Config{MaxTokens: c.MaxChunkTokens}
	if c.ChunkOverlap != nil {
		cc.Overlap = *c.ChunkOverlap
		if cc.Overlap == 0 {
			cc.Overlap = chunker.NoOverlap
		}
	}
	return cc
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decoding yaml: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterStructValidation(validateChunking, Config{})
	})
	return vld
}

// validateChunking requires an explicit overlap to stay below the
// fragment size.
func validateChunking(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.ChunkOverlap == nil {
		return
	}
	maxTokens := c.MaxChunkTokens
	if maxTokens == 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	if *c.ChunkOverlap >= maxTokens {
		sl.ReportError(c.ChunkOverlap, "ChunkOverlap", "ChunkOverlap", "ltfield", "MaxChunkTokens")
	}
}

// Validate reports whether the configuration can be used. Errors wrap
// ErrInvalidConfig.
func (c Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

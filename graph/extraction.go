package graph

import (
	"log/slog"
	"strings"
)

// Placeholder tokens that appear verbatim in model output when the
// extraction prompt is sent without substituting its delimiters.
const (
	PlaceholderTuple      = "{tuple_delimiter}"
	PlaceholderRecord     = "{record_delimiter}"
	PlaceholderCompletion = "{completion_delimiter}"
)

// delimiterRule lists candidate delimiters in priority order. The first
// candidate present anywhere in the output wins; fallback is used otherwise.
type delimiterRule struct {
	candidates [2]string
	fallback   string
}

var (
	recordRule = delimiterRule{candidates: [2]string{PlaceholderRecord, "|"}, fallback: "\n"}
	tupleRule  = delimiterRule{candidates: [2]string{PlaceholderTuple, ";"}, fallback: "\t"}
)

func (r delimiterRule) detect(s string) string {
	for _, c := range r.candidates {
		if strings.Contains(s, c) {
			return c
		}
	}
	return r.fallback
}

// ParseOption configures ParseExtractionOutput.
type ParseOption func(*parseOptions)

type parseOptions struct {
	recordDelimiter string
	tupleDelimiter  string
	logger          *slog.Logger
}

// WithRecordDelimiter fixes the separator between records. An empty value
// keeps auto-detection.
func WithRecordDelimiter(d string) ParseOption {
	return func(o *parseOptions) { o.recordDelimiter = d }
}

// WithTupleDelimiter fixes the separator between fields of a record. An
// empty value keeps auto-detection.
func WithTupleDelimiter(d string) ParseOption {
	return func(o *parseOptions) { o.tupleDelimiter = d }
}

// WithLogger sets the logger that receives dropped-record diagnostics.
func WithLogger(l *slog.Logger) ParseOption {
	return func(o *parseOptions) { o.logger = l }
}

// ParseExtractionOutput reads entity and relationship tuples from model
// output of the form
//
//	("entity"<t>name<t>type<t>description)<r>
//	("relationship"<t>source<t>target<t>description<t>strength)
//
// where <t> and <r> are the tuple and record delimiters. Delimiters that
// are not supplied are auto-detected from the whole output: the record
// delimiter is "{record_delimiter}", else "|", else a newline; the tuple
// delimiter is "{tuple_delimiter}", else ";", else a tab. Detection only
// checks presence, so a stray "|" or ";" inside a description changes how
// every record is split.
//
// Malformed records (unknown tag or wrong field count) are skipped and
// logged at debug level. The function never fails; records are returned
// in input order.
func ParseExtractionOutput(output string, opts ...ParseOption) ([]EntityRecord, []RelationshipRecord) {
	o := parseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	output = strings.TrimSpace(strings.ReplaceAll(output, PlaceholderCompletion, ""))

	recordDelim := o.recordDelimiter
	if recordDelim == "" {
		recordDelim = recordRule.detect(output)
	}
	tupleDelim := o.tupleDelimiter
	if tupleDelim == "" {
		tupleDelim = tupleRule.detect(output)
	}

	var (
		nodes   []EntityRecord
		rels    []RelationshipRecord
		dropped int
	)
	for _, rec := range strings.Split(output, recordDelim) {
		rec = unwrapParens(strings.TrimSpace(rec))
		if rec == "" {
			continue
		}

		fields := strings.Split(rec, tupleDelim)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) == 0 {
			continue
		}

		switch tag := strings.ToLower(strings.Trim(fields[0], ` "'`)); tag {
		case RecordEntity:
			if len(fields) != 4 {
				o.logger.Debug("graph: dropping entity record with wrong field count",
					"fields", len(fields), "want", 4, "record", rec)
				dropped++
				continue
			}
			nodes = append(nodes, EntityRecord{
				RecordType:  RecordEntity,
				Name:        fields[1],
				Type:        fields[2],
				Description: fields[3],
			})
		case RecordRelationship:
			if len(fields) != 5 {
				o.logger.Debug("graph: dropping relationship record with wrong field count",
					"fields", len(fields), "want", 5, "record", rec)
				dropped++
				continue
			}
			rels = append(rels, RelationshipRecord{
				RecordType:  RecordRelationship,
				Source:      fields[1],
				Target:      fields[2],
				Description: fields[3],
				Strength:    ParseStrength(fields[4]),
			})
		default:
			o.logger.Debug("graph: skipping record with unknown type",
				"type", tag, "record", rec)
			dropped++
		}
	}

	if dropped > 0 {
		o.logger.Debug("graph: extraction output parsed",
			"entities", len(nodes), "relationships", len(rels), "dropped", dropped,
			"record_delimiter", recordDelim, "tuple_delimiter", tupleDelim)
	}
	return nodes, rels
}

// unwrapParens removes one surrounding "(" ")" pair and trims the result.
// Inner parentheses are kept, balanced or not.
func unwrapParens(rec string) string {
	if len(rec) >= 2 && rec[0] == '(' && rec[len(rec)-1] == ')' {
		return strings.TrimSpace(rec[1 : len(rec)-1])
	}
	return rec
}

package graph

import (
	"strings"

	"github.com/brunobiangulo/graphtext/llm"
)

// extractionSystemPrompt asks for entities and relationships in one pass,
// written as delimited tuples that ParseExtractionOutput understands.
const extractionSystemPrompt = `You are an entity and relationship extraction engine that builds a knowledge graph.
Given a text document and a list of entity types, identify all entities of those types and all relationships among them.

1. For each entity, output:
("entity"{tuple_delimiter}<entity_name>{tuple_delimiter}<entity_type>{tuple_delimiter}<entity_description>)
- entity_name: name of the entity, capitalized as in the text
- entity_type: one of the ENTITY TYPES below
- entity_description: comprehensive description of the entity's attributes and activities

2. For each pair of clearly related entities, output:
("relationship"{tuple_delimiter}<source_entity>{tuple_delimiter}<target_entity>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)
- source_entity, target_entity: entity names from step 1
- relationship_description: why the two entities are related
- relationship_strength: a number from 1 to 10 indicating how strong the relationship is

3. Separate records with {record_delimiter}.
4. When finished, output {completion_delimiter}.

Do NOT include any other text.

EXAMPLE:

Entity types: organization, person
Text: "Ada Lovelace worked with Charles Babbage on the Analytical Engine at the University of London."
Output:
("entity"{tuple_delimiter}Ada Lovelace{tuple_delimiter}person{tuple_delimiter}Mathematician who wrote programs for the Analytical Engine){record_delimiter}
("entity"{tuple_delimiter}Charles Babbage{tuple_delimiter}person{tuple_delimiter}Inventor of the Analytical Engine){record_delimiter}
("entity"{tuple_delimiter}University of London{tuple_delimiter}organization{tuple_delimiter}University where the work took place){record_delimiter}
("relationship"{tuple_delimiter}Ada Lovelace{tuple_delimiter}Charles Babbage{tuple_delimiter}Collaborated on the Analytical Engine{tuple_delimiter}9){record_delimiter}
("relationship"{tuple_delimiter}Charles Babbage{tuple_delimiter}University of London{tuple_delimiter}Worked at the university{tuple_delimiter}5)
{completion_delimiter}`

const extractionUserPrompt = `Entity types: {entity_types}
Text: {input_text}
Output:`

// PromptOptions controls ExtractionMessages. Zero values fall back to the
// placeholder delimiters and DefaultEntityTypes.
type PromptOptions struct {
	EntityTypes         []string
	TupleDelimiter      string
	RecordDelimiter     string
	CompletionDelimiter string
}

func (o PromptOptions) withDefaults() PromptOptions {
	if len(o.EntityTypes) == 0 {
		o.EntityTypes = DefaultEntityTypes()
	}
	if o.TupleDelimiter == "" {
		o.TupleDelimiter = PlaceholderTuple
	}
	if o.RecordDelimiter == "" {
		o.RecordDelimiter = PlaceholderRecord
	}
	if o.CompletionDelimiter == "" {
		o.CompletionDelimiter = PlaceholderCompletion
	}
	return o
}

// ExtractionMessages builds the system and user messages that ask a model
// to extract entities and relationships from text.
func ExtractionMessages(text string, opts PromptOptions) []llm.Message {
	opts = opts.withDefaults()

	delims := strings.NewReplacer(
		PlaceholderTuple, opts.TupleDelimiter,
		PlaceholderRecord, opts.RecordDelimiter,
		PlaceholderCompletion, opts.CompletionDelimiter,
	)
	user := strings.NewReplacer(
		"{entity_types}", strings.Join(opts.EntityTypes, ", "),
		"{input_text}", text,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: delims.Replace(extractionSystemPrompt)},
		{Role: llm.RoleUser, Content: user.Replace(extractionUserPrompt)},
	}
}

package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lox/pokerescrow/internal/protocol"
)

//go:embed schemas
var schemaFiles embed.FS

const intentSchemaURL = "https://pokerescrow.local/schemas/intent.json"

// IntentValidator checks JSON intents submitted over HTTP against the intent schema.
type IntentValidator struct {
	schema *jsonschema.Schema
}

// NewIntentValidator compiles the embedded intent schema.
func NewIntentValidator() (*IntentValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	data, err := schemaFiles.ReadFile("schemas/intent.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read intent schema: %w", err)
	}
	if err := compiler.AddResource(intentSchemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add intent schema: %w", err)
	}
	schema, err := compiler.Compile(intentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent schema: %w", err)
	}
	return &IntentValidator{schema: schema}, nil
}

// Decode validates raw JSON and decodes it into an intent.
func (v *IntentValidator) Decode(data []byte) (*protocol.Intent, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var intent protocol.Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	intent.Type = protocol.TypeIntent
	return &intent, nil
}

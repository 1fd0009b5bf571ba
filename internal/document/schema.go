package document

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schema/shape.schema.json
	shapeSchemaJSON []byte
	//go:embed schema/scene.schema.json
	sceneSchemaJSON []byte
)

const shapeSchemaURL = "https://vertexforge.dev/schema/shape.json"

type schemaFunc func() (*gojsonschema.Schema, error)

var shapeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(shapeSchemaJSON))
})

var sceneSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	sl := gojsonschema.NewSchemaLoader()
	if err := sl.AddSchema(shapeSchemaURL, gojsonschema.NewBytesLoader(shapeSchemaJSON)); err != nil {
		return nil, err
	}
	return sl.Compile(gojsonschema.NewBytesLoader(sceneSchemaJSON))
})

// SchemaJSON returns the JSON schema of a shape record.
func SchemaJSON() []byte { return shapeSchemaJSON }

func validateJSON(schema schemaFunc, data []byte) error {
	return validate(schema, gojsonschema.NewBytesLoader(data))
}

func validateValue(schema schemaFunc, v any) error {
	return validate(schema, gojsonschema.NewGoLoader(v))
}

func validate(schema schemaFunc, doc gojsonschema.JSONLoader) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	result, err := s.Validate(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}

package profile

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON Schema describing the profile file format,
// for editor validation of profile YAML.
func JSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}

	schema := reflector.Reflect(&File{})
	schema.Title = "Mapping profile"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile schema: %w", err)
	}

	return data, nil
}

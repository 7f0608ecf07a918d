package scenario

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError is a single schema violation in a scenario document.
type ValidationError struct {
	Path    string
	Message string
	Code    string
}

// SchemaError lists every schema violation found in a scenario document.
type SchemaError struct {
	Source string
	Errors []ValidationError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", ve.Path, ve.Message))
	}
	return fmt.Sprintf("%s: invalid scenario: %s", e.Source, strings.Join(parts, "; "))
}

var locatorProperties = map[string]interface{}{
	"text":  map[string]interface{}{"type": "string", "minLength": 1},
	"role":  map[string]interface{}{"type": "string", "minLength": 1},
	"name":  map[string]interface{}{"type": "string", "minLength": 1},
	"exact": map[string]interface{}{"type": "boolean"},
}

var locatorChoice = []interface{}{
	map[string]interface{}{
		"required": []string{"text"},
		"not":      map[string]interface{}{"required": []string{"role"}},
	},
	map[string]interface{}{
		"required": []string{"role", "name"},
		"not":      map[string]interface{}{"required": []string{"text"}},
	},
}

// scenarioSchema is the JSON Schema scenario files must satisfy.
var scenarioSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"title":    "UI smoke scenario",
	"type":     "object",
	"required": []string{"steps"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{"type": "string"},
		"steps": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"goto": map[string]interface{}{"type": "string", "minLength": 1},
					"click": map[string]interface{}{
						"type":                 "object",
						"properties":           locatorProperties,
						"additionalProperties": false,
						"oneOf":                locatorChoice,
					},
					"wait": map[string]interface{}{
						"type": "string",
						"enum": []string{string(WaitNetworkIdle), string(WaitNone)},
					},
					"expect": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"text":  locatorProperties["text"],
								"role":  locatorProperties["role"],
								"name":  locatorProperties["name"],
								"exact": locatorProperties["exact"],
								"state": map[string]interface{}{
									"type": "string",
									"enum": []string{string(StateVisible), string(StateHidden)},
								},
							},
							"additionalProperties": false,
							"oneOf":                locatorChoice,
						},
					},
					"screenshot": map[string]interface{}{"type": "string", "minLength": 1},
				},
				"additionalProperties": false,
				"oneOf": []interface{}{
					map[string]interface{}{
						"required": []string{"goto"},
						"not":      map[string]interface{}{"required": []string{"click"}},
					},
					map[string]interface{}{
						"required": []string{"click"},
						"not":      map[string]interface{}{"required": []string{"goto"}},
					},
				},
			},
		},
	},
	"additionalProperties": false,
}

var schemaLoader gojsonschema.JSONLoader

func init() {
	raw, err := json.Marshal(scenarioSchema)
	if err != nil {
		panic(fmt.Sprintf("scenario schema: %v", err))
	}
	schemaLoader = gojsonschema.NewBytesLoader(raw)
}

// validateDocument checks a decoded YAML document against the scenario schema.
func validateDocument(source string, doc interface{}) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal document: %w", source, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return fmt.Errorf("%s: validation error: %w", source, err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Source: source}
	for _, re := range result.Errors() {
		schemaErr.Errors = append(schemaErr.Errors, ValidationError{
			Path:    re.Field(),
			Message: re.Description(),
			Code:    re.Type(),
		})
	}
	return schemaErr
}

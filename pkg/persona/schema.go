package persona

import (
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed personas.schema.json
var personasSchema string

func validatePersonaDocument(path string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(personasSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.Wrapf(err, "could not validate %s", path)
	}
	if result.Valid() {
		return nil
	}

	field := ""
	descriptions := []string{}
	for _, desc := range result.Errors() {
		if field == "" {
			field = desc.Field()
		}
		descriptions = append(descriptions, desc.String())
	}

	return &ValidationError{
		File:   path,
		Field:  field,
		Reason: strings.Join(descriptions, "; "),
	}
}

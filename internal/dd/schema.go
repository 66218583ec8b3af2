package dd

import (
	_ "embed"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed solver_response.schema.json
var responseSchemaJSON string

var responseSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("solver_response.schema.json", strings.NewReader(responseSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("solver_response.schema.json")
}

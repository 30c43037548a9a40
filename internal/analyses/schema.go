package analyses

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/analysis_result.json
var analysisResultSchema string

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(analysisResultSchema))
	})
	return compiledSchema, schemaErr
}

// SchemaViolations checks a raw model object against the AnalysisResult schema.
// The result is diagnostic only; Validate repairs whatever is reported here.
func SchemaViolations(raw []byte) []string {
	schema, err := loadSchema()
	if err != nil {
		return []string{fmt.Sprintf("(schema): %v", err)}
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return []string{fmt.Sprintf("(root): %v", err)}
	}
	if result.Valid() {
		return nil
	}
	out := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		out = append(out, field+": "+desc.Description())
	}
	return out
}

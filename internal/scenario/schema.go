package scenario

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// SchemaError lists every schema violation found in a scenario document.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Issues, "; ")
}

// validateSchema checks a decoded YAML document against #Scenario.
func validateSchema(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		se := &SchemaError{}
		for _, e := range cueerrors.Errors(err) {
			se.Issues = append(se.Issues, e.Error())
		}
		return se
	}
	return nil
}

package renderer

import (
	"encoding/json"
	"io"

	"github.com/ChainSafe/asmflow/analyzer"
)

// JSONRenderer renders reports in JSON format.
type JSONRenderer struct {
	indent bool
}

func NewJSONRenderer(indent bool) Renderer {
	return &JSONRenderer{indent: indent}
}

func (r *JSONRenderer) Render(report *analyzer.Report, output io.Writer) error {
	enc := json.NewEncoder(output)
	if r.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

func (r *JSONRenderer) Format() string {
	return "json"
}

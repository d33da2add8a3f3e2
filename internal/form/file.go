package form

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML form file: a flat mapping of field id to value.
//
//	project_name: Estación Norte
//	flow_rate: 50
//	flow_rate_unit: l/s
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML form data. Scalars are kept as their literal text so the
// collector sees exactly what was written.
func Parse(data []byte) (Map, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing form YAML: %w", err)
	}
	out := make(Map, len(raw))
	for id, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("field %s: expected a scalar value", id)
		}
		if node.Tag == "!!null" {
			continue
		}
		out[id] = node.Value
	}
	return out, nil
}

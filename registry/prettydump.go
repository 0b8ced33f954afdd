package registry

import (
	"fmt"
	"strings"

	yaml "sigs.k8s.io/yaml/goyaml.v3"
)

// PrettyDump renders value as an indented YAML document, for inclusion in log messages.
// If fields is not empty, the document contains the value under "value" and the fields under "context".
// Values that can't be encoded are rendered with the %#v verb.
func (r *Registry) PrettyDump(value any, fields map[string]any) string {
	return PrettyDump(value, fields)
}

// PrettyDump is the function behind Registry.PrettyDump.
func PrettyDump(value any, fields map[string]any) (res string) {
	doc := value
	if len(fields) > 0 {
		doc = map[string]any{
			"value":   value,
			"context": fields,
		}
	}

	// The encoder panics on some values, such as channels and functions
	defer func() {
		if recover() != nil {
			res = fmt.Sprintf("%#v", value)
		}
	}()

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	err := enc.Encode(doc)
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		return fmt.Sprintf("%#v", value)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

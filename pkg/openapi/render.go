package openapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

// Format of a rendered document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml"
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// ContentType returns the HTTP content type for f
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Render serialises doc. Map keys are emitted in sorted order, so equal
// documents render to identical bytes.
func Render(doc *openapi3.T, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openapi document: %w", err)
	}
	if doc.Components != nil && len(doc.Components.Schemas) == 0 {
		if data, err = withEmptySchemas(data); err != nil {
			return nil, err
		}
	}
	if format == FormatYAML {
		return ToYAML(data)
	}
	return data, nil
}

// withEmptySchemas adds "components.schemas": {}, which kin-openapi omits
// when the map is empty
func withEmptySchemas(data []byte) ([]byte, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode openapi document: %w", err)
	}
	components, _ := doc["components"].(map[string]any)
	if components == nil {
		components = map[string]any{}
		doc["components"] = components
	}
	components["schemas"] = map[string]any{}
	return json.MarshalIndent(doc, "", "  ")
}

// ToYAML converts a rendered JSON document to YAML, keeping key order
func ToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse json document: %w", err)
	}
	// JSON flow style carries over from the parser; YAML readers expect blocks
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode yaml document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if n.Style == yaml.DoubleQuotedStyle && n.Tag == "!!str" {
			n.Style = 0
			if needsQuoting(n.Value) {
				n.Style = yaml.DoubleQuotedStyle
			}
		}
		return
	}
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// needsQuoting reports whether an unquoted scalar would resolve to a
// non-string value
func needsQuoting(s string) bool {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return true
	}
	str, ok := v.(string)
	return !ok || str != s
}

// Fingerprint identifies a collection set independent of input order. Two
// sets with the same fingerprint generate the same document.
func Fingerprint(collections []*schema.CollectionConfig) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, c := range sortedBySlug(collections) {
		if err := enc.Encode(c); err != nil {
			return "", fmt.Errorf("failed to fingerprint %s: %w", c.Slug, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

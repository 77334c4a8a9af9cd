package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func writeYAML(w io.Writer, n *node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(n)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return nil
}

// yamlNode converts n to a yaml.Node, keeping key order.
func yamlNode(n *node) *yaml.Node {
	switch n.kind {
	case objectNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(n.keys) == 0 {
			out.Style = yaml.FlowStyle
		}
		for i, k := range n.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(n.fields[i]))
		}
		return out
	case arrayNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(n.items) == 0 {
			out.Style = yaml.FlowStyle
		}
		for _, it := range n.items {
			out.Content = append(out.Content, yamlNode(it))
		}
		return out
	default:
		return yamlScalar(n.value)
	}
}

func yamlScalar(v any) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}

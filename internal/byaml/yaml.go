package byaml

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML renders the document root as text YAML. Dictionary keys keep their
// stored order and paths are written as point lists.
func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Node(d.Root)); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Node converts a decoded value into a YAML node tree.
func Node(v any) *yaml.Node {
	switch v := v.(type) {
	case nil:
		return scalar("!!null", "null")
	case string:
		return scalar("!!str", v)
	case bool:
		return scalar("!!bool", strconv.FormatBool(v))
	case int32:
		return scalar("!!int", strconv.FormatInt(int64(v), 10))
	case float32:
		return scalar("!!float", formatFloat(v))
	case []any:
		n := sequence()
		for _, e := range v {
			n.Content = append(n.Content, Node(e))
		}
		return n
	case *Dictionary:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, e := range v.All() {
			n.Content = append(n.Content, scalar("!!str", k), Node(e))
		}
		return n
	case []string:
		n := sequence()
		for _, s := range v {
			n.Content = append(n.Content, scalar("!!str", s))
		}
		return n
	case Path:
		n := sequence()
		for _, p := range v {
			n.Content = append(n.Content, pointNode(p))
		}
		return n
	case []Path:
		n := sequence()
		for _, p := range v {
			n.Content = append(n.Content, Node(p))
		}
		return n
	default:
		return scalar("!!str", fmt.Sprint(v))
	}
}

func pointNode(p PathPoint) *yaml.Node {
	vec := func(v [3]float32) *yaml.Node {
		n := sequence()
		n.Style = yaml.FlowStyle
		for _, c := range v {
			n.Content = append(n.Content, scalar("!!float", formatFloat(c)))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
		scalar("!!str", "position"), vec(p.Position),
		scalar("!!str", "normal"), vec(p.Normal),
		scalar("!!str", "unknown"), scalar("!!int", strconv.FormatUint(uint64(p.Unknown18), 10)),
	}}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

// formatFloat writes f so that it reads back as a YAML float.
func formatFloat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return ".inf"
	case math.IsInf(float64(f), -1):
		return "-.inf"
	case math.IsNaN(float64(f)):
		return ".nan"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

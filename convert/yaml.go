package convert

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/errors"
)

// ToYAML renders the tree as YAML. yaml.Node mapping contents are ordered,
// so key order survives the trip.
func ToYAML(root *ast.Node) (string, error) {
	node, err := yamlNode(documentValue(root))
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", errors.Wrap(err, "encoding YAML")
	}
	return string(out), nil
}

func yamlNode(node *ast.Node) (*yaml.Node, error) {
	switch node.Kind {
	case ast.KindObject:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, entry := range node.Entries {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key}
			value, err := yamlNode(entry.Value)
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, key, value)
		}
		return mapping, nil
	case ast.KindArray:
		sequence := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range node.Items {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			sequence.Content = append(sequence.Content, child)
		}
		return sequence, nil
	case ast.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: node.Str}, nil
	case ast.KindNumber:
		literal := node.Literal
		if literal == "" {
			literal = strconv.FormatFloat(node.Num, 'g', -1, 64)
		}
		tag := "!!float"
		if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: literal}, nil
	case ast.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(node.Bool)}, nil
	case ast.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, errors.Newf("cannot convert %s node to YAML", node.Kind)
	}
}

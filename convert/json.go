// Package convert translates parsed TOON trees to and from JSON and YAML.
// Key order is significant in TOON, so both directions preserve it: JSON
// output is emitted by a tree walk rather than a map marshal, and JSON input
// is read from the decoder's token stream rather than into a map.
package convert

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/errors"
)

// ToJSON renders the tree as JSON. indent is the per-level indentation
// string; empty means compact single-line output.
func ToJSON(root *ast.Node, indent string) (string, error) {
	var b strings.Builder
	w := &jsonWriter{b: &b, indent: indent}
	node := documentValue(root)
	if err := w.value(node, 0); err != nil {
		return "", err
	}
	b.WriteByte('\n')
	return b.String(), nil
}

// documentValue unwraps a document node to its single top-level value. An
// empty document converts as an empty object.
func documentValue(root *ast.Node) *ast.Node {
	if root == nil {
		return ast.NewObject(nil, ast.Span{})
	}
	if root.Kind == ast.KindDocument {
		if len(root.Children) == 0 {
			return ast.NewObject(nil, ast.Span{})
		}
		return root.Children[0]
	}
	return root
}

type jsonWriter struct {
	b      *strings.Builder
	indent string
}

func (w *jsonWriter) newline(level int) {
	if w.indent == "" {
		return
	}
	w.b.WriteByte('\n')
	for i := 0; i < level; i++ {
		w.b.WriteString(w.indent)
	}
}

func (w *jsonWriter) value(node *ast.Node, level int) error {
	switch node.Kind {
	case ast.KindObject:
		return w.object(node, level)
	case ast.KindArray:
		return w.array(node, level)
	case ast.KindString:
		return w.str(node.Str)
	case ast.KindNumber:
		return w.number(node)
	case ast.KindBool:
		if node.Bool {
			w.b.WriteString("true")
		} else {
			w.b.WriteString("false")
		}
		return nil
	case ast.KindNull:
		w.b.WriteString("null")
		return nil
	default:
		return errors.Newf("cannot convert %s node to JSON", node.Kind)
	}
}

func (w *jsonWriter) object(obj *ast.Node, level int) error {
	if len(obj.Entries) == 0 {
		w.b.WriteString("{}")
		return nil
	}
	w.b.WriteByte('{')
	for i, entry := range obj.Entries {
		if i > 0 {
			w.b.WriteByte(',')
		}
		w.newline(level + 1)
		if err := w.str(entry.Key); err != nil {
			return err
		}
		w.b.WriteByte(':')
		if w.indent != "" {
			w.b.WriteByte(' ')
		}
		if err := w.value(entry.Value, level+1); err != nil {
			return err
		}
	}
	w.newline(level)
	w.b.WriteByte('}')
	return nil
}

func (w *jsonWriter) array(arr *ast.Node, level int) error {
	if len(arr.Items) == 0 {
		w.b.WriteString("[]")
		return nil
	}
	w.b.WriteByte('[')
	for i, item := range arr.Items {
		if i > 0 {
			w.b.WriteByte(',')
		}
		w.newline(level + 1)
		if err := w.value(item, level+1); err != nil {
			return err
		}
	}
	w.newline(level)
	w.b.WriteByte(']')
	return nil
}

func (w *jsonWriter) str(s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding string")
	}
	w.b.Write(encoded)
	return nil
}

// number re-emits the source literal when it is valid JSON notation,
// preserving the author's precision. Literals JSON rejects (leading plus,
// bare exponent forms) fall back to the decoded value.
func (w *jsonWriter) number(node *ast.Node) error {
	if node.Literal != "" && json.Valid([]byte(node.Literal)) {
		w.b.WriteString(node.Literal)
		return nil
	}
	encoded, err := json.Marshal(node.Num)
	if err != nil {
		return errors.Wrap(err, "encoding number")
	}
	w.b.Write(encoded)
	return nil
}

// FromJSON parses JSON into a TOON tree, preserving key order by walking
// the decoder's token stream. Numbers keep their source notation. Spans are
// zero; the tree exists to be formatted, not queried.
func FromJSON(data []byte) (*ast.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Anything after the first value is a malformed document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}

	return ast.NewDocument([]*ast.Node{value}, ast.Span{}), nil
}

func decodeValue(dec *json.Decoder) (*ast.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "reading JSON")
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (*ast.Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, errors.Newf("unexpected delimiter %q", t.String())
		}
	case string:
		return ast.NewString(t, ast.Span{}), nil
	case json.Number:
		value, err := t.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "number %q", t.String())
		}
		return ast.NewNumber(value, t.String(), ast.Span{}), nil
	case bool:
		return ast.NewBool(t, ast.Span{}), nil
	case nil:
		return ast.NewNull(ast.Span{}), nil
	default:
		return nil, errors.Newf("unexpected JSON token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*ast.Node, error) {
	var entries []ast.ObjectEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "reading object key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.Newf("object key is %T, not string", keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.ObjectEntry{Key: key, Value: value})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "closing object")
	}
	return ast.NewObject(entries, ast.Span{}), nil
}

func decodeArray(dec *json.Decoder) (*ast.Node, error) {
	var items []*ast.Node
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "closing array")
	}
	return ast.NewArray(items, arrayFormFor(items), len(items), ast.Span{}), nil
}

// arrayFormFor picks the TOON shape a JSON array formats back into: leaf
// lists inline, everything containing structure expands.
func arrayFormFor(items []*ast.Node) ast.ArrayForm {
	for _, item := range items {
		if !item.IsLeaf() {
			return ast.ArrayExpanded
		}
	}
	return ast.ArrayInline
}

package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is an API description document held as an order-preserving node tree.
// JSON input is decoded token by token into yaml.v3 nodes so key order survives a
// normalize/write round trip; other input is read as YAML.
type Document struct {
	root *yaml.Node
}

// ParseDocument decodes data into a Document. The root must be an object.
// Duplicate JSON object keys keep the position of the first occurrence and the
// value of the last one.
func ParseDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &StructuralValidationError{Problems: []string{"document is empty"}}
	}

	var (
		root *yaml.Node
		err  error
	)
	if trimmed[0] == '{' || trimmed[0] == '[' {
		root, err = decodeJSON(trimmed)
	} else {
		root, err = decodeYAML(trimmed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode API description document: %w", err)
	}

	root = resolve(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, &StructuralValidationError{Problems: []string{"document root must be an object"}}
	}
	return &Document{root: root}, nil
}

func decodeYAML(data []byte) (*yaml.Node, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, nil
		}
		return n.Content[0], nil
	}
	return &n, nil
}

func decodeJSON(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after top-level value", tok)
		}
		return nil, err
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				if i, _ := lookup(m, key); i >= 0 {
					m.Content[i] = value
					continue
				}
				m.Content = append(m.Content, stringNode(key), value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq.Content = append(seq.Content, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return stringNode(v), nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(v.String(), ".eE") {
			tag = "!!float"
		}
		// The literal is kept as written, so values beyond float64 range such as
		// 1e400 are emitted unchanged.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Validate checks the required top-level sections without mutating the document.
func (d *Document) Validate() error {
	var problems []string

	if _, v := lookup(d.root, "openapi"); isFalsy(v) {
		problems = append(problems, `missing required section "openapi"`)
	}
	if _, v := lookup(d.root, "info"); v == nil || isNull(v) {
		problems = append(problems, `missing required section "info"`)
	}
	for _, key := range []string{"paths", "components"} {
		_, v := lookup(d.root, key)
		switch {
		case v == nil || isNull(v):
			problems = append(problems, fmt.Sprintf("missing required section %q", key))
		case v.Kind != yaml.MappingNode:
			problems = append(problems, fmt.Sprintf("section %q must be an object", key))
		}
	}

	if len(problems) > 0 {
		return &StructuralValidationError{Problems: problems}
	}
	return nil
}

// MarshalIndent renders the document as JSON with 2-space indentation,
// keys in document order and a trailing newline.
func (d *Document) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeNode(&buf, d.root, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	n = resolve(n)
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return encodeNode(buf, n.Content[0], depth)

	case yaml.MappingNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i := 0; i+1 < len(n.Content); i += 2 {
			indent(buf, depth+1)
			if err := writeString(buf, n.Content[i].Value); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encodeNode(buf, n.Content[i+1], depth+1); err != nil {
				return err
			}
			if i+2 < len(n.Content) {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Content {
			indent(buf, depth+1)
			if err := encodeNode(buf, item, depth+1); err != nil {
				return err
			}
			if i+1 < len(n.Content) {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		return encodeScalar(buf, n)
	}

	return fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
}

func encodeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return writeString(buf, n.Value)
		}
		buf.WriteString(strconv.FormatBool(b))
		return nil
	case "!!int", "!!float":
		if isJSONNumber(n.Value) {
			buf.WriteString(n.Value)
			return nil
		}
		if i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64); err == nil {
			buf.WriteString(strconv.FormatInt(i, 10))
			return nil
		}
		// .inf and .nan have no JSON form.
		return writeString(buf, n.Value)
	default:
		return writeString(buf, n.Value)
	}
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode string: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	var num json.Number
	return json.Unmarshal([]byte(s), &num) == nil
}

func indent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString("  ")
	}
}

// resolve follows alias nodes to their anchor.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// lookup returns the index in m.Content of the value stored under key, and the value itself.
func lookup(m *yaml.Node, key string) (int, *yaml.Node) {
	if m == nil || m.Kind != yaml.MappingNode {
		return -1, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i + 1, resolve(m.Content[i+1])
		}
	}
	return -1, nil
}

// set stores value under key, appending the key when it is absent.
func set(m *yaml.Node, key string, value *yaml.Node) {
	if i, _ := lookup(m, key); i >= 0 {
		m.Content[i] = value
		return
	}
	m.Content = append(m.Content, stringNode(key), value)
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func stringSeq(values ...string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, stringNode(v))
	}
	return seq
}

func isNull(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// isFalsy mirrors JSON falsiness: absent, null, "", false, 0.
func isFalsy(n *yaml.Node) bool {
	if n == nil || isNull(n) {
		return true
	}
	if n.Kind != yaml.ScalarNode {
		return false
	}
	switch n.ShortTag() {
	case "!!str":
		return n.Value == ""
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		return err == nil && !b
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		return err == nil && (f == 0 || f != f)
	}
	return false
}

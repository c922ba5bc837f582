// Package document models JSON documents as order-preserving trees.
//
// Object keys keep the order in which they appeared in the source so that
// translated output reads like its input and "first field" heuristics are
// deterministic.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the JSON type of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a JSON value. A nil *Node behaves as JSON null.
type Node struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	obj  *orderedmap.OrderedMap[string, *Node]
	arr  []*Node
}

// NewNull returns a null node.
func NewNull() *Node { return &Node{kind: Null} }

// NewBool returns a boolean node.
func NewBool(b bool) *Node { return &Node{kind: Bool, b: b} }

// NewNumber returns a number node holding n verbatim.
func NewNumber(n json.Number) *Node { return &Node{kind: Number, num: n} }

// NewString returns a string node.
func NewString(s string) *Node { return &Node{kind: String, str: s} }

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: Object, obj: orderedmap.New[string, *Node]()}
}

// NewArray returns an array node holding items.
func NewArray(items ...*Node) *Node {
	arr := make([]*Node, 0, len(items))
	arr = append(arr, items...)
	return &Node{kind: Array, arr: arr}
}

// Kind returns the node's JSON type.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

// IsContainer reports whether the node is an object or an array.
func (n *Node) IsContainer() bool {
	k := n.Kind()
	return k == Object || k == Array
}

// IsPrimitive reports whether the node is a scalar (including null).
func (n *Node) IsPrimitive() bool {
	return !n.IsContainer()
}

// Str returns the string value and whether the node is a string.
func (n *Node) Str() (string, bool) {
	if n.Kind() != String {
		return "", false
	}
	return n.str, true
}

// Number returns the number literal and whether the node is a number.
func (n *Node) Number() (json.Number, bool) {
	if n.Kind() != Number {
		return "", false
	}
	return n.num, true
}

// BoolValue returns the boolean value and whether the node is a boolean.
func (n *Node) BoolValue() (bool, bool) {
	if n.Kind() != Bool {
		return false, false
	}
	return n.b, true
}

// Scalar returns the textual form of a primitive node (the empty string for
// null and containers).
func (n *Node) Scalar() string {
	switch n.Kind() {
	case String:
		return n.str
	case Number:
		return n.num.String()
	case Bool:
		if n.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Get returns the value stored under key in an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != Object {
		return nil, false
	}
	return n.obj.Get(key)
}

// Set stores v under key. Existing keys keep their position; new keys are
// appended. Set panics if n is not an object.
func (n *Node) Set(key string, v *Node) {
	if n.Kind() != Object {
		panic("document: Set on " + n.Kind().String())
	}
	if v == nil {
		v = NewNull()
	}
	n.obj.Set(key, v)
}

// Delete removes key from an object node.
func (n *Node) Delete(key string) {
	if n.Kind() == Object {
		n.obj.Delete(key)
	}
}

// Keys returns the keys of an object node in document order.
func (n *Node) Keys() []string {
	if n.Kind() != Object {
		return nil
	}
	keys := make([]string, 0, n.obj.Len())
	for pair := n.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of object members or array items.
func (n *Node) Len() int {
	switch n.Kind() {
	case Object:
		return n.obj.Len()
	case Array:
		return len(n.arr)
	default:
		return 0
	}
}

// Items returns the items of an array node. The slice is shared.
func (n *Node) Items() []*Node {
	if n.Kind() != Array {
		return nil
	}
	return n.arr
}

// Index returns the i-th item of an array node.
func (n *Node) Index(i int) (*Node, bool) {
	if n.Kind() != Array || i < 0 || i >= len(n.arr) {
		return nil, false
	}
	return n.arr[i], true
}

// SetIndex replaces the i-th item of an array node.
func (n *Node) SetIndex(i int, v *Node) {
	if n.Kind() != Array {
		panic("document: SetIndex on " + n.Kind().String())
	}
	if v == nil {
		v = NewNull()
	}
	n.arr[i] = v
}

// Append adds v to the end of an array node.
func (n *Node) Append(v *Node) {
	if n.Kind() != Array {
		panic("document: Append on " + n.Kind().String())
	}
	if v == nil {
		v = NewNull()
	}
	n.arr = append(n.arr, v)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	switch n.Kind() {
	case Object:
		out := NewObject()
		for pair := n.obj.Oldest(); pair != nil; pair = pair.Next() {
			out.obj.Set(pair.Key, pair.Value.Clone())
		}
		return out
	case Array:
		out := &Node{kind: Array, arr: make([]*Node, len(n.arr))}
		for i, item := range n.arr {
			out.arr[i] = item.Clone()
		}
		return out
	case Null:
		return NewNull()
	default:
		cp := *n
		return &cp
	}
}

// Interface converts the node into plain Go values (map[string]any, []any,
// string, json.Number, bool, nil). Key order is lost.
func (n *Node) Interface() any {
	switch n.Kind() {
	case Object:
		m := make(map[string]any, n.obj.Len())
		for pair := n.obj.Oldest(); pair != nil; pair = pair.Next() {
			m[pair.Key] = pair.Value.Interface()
		}
		return m
	case Array:
		out := make([]any, len(n.arr))
		for i, item := range n.arr {
			out[i] = item.Interface()
		}
		return out
	case String:
		return n.str
	case Number:
		return n.num
	case Bool:
		return n.b
	default:
		return nil
	}
}

// Parse decodes a single JSON value, keeping object key order and number
// literals intact.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse document: unexpected data after top-level value")
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals.
func MustParse(s string) *Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return NewString(v), nil
	case json.Number:
		return NewNumber(v), nil
	case bool:
		return NewBool(v), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %T", tok)
}

// MarshalJSON encodes the node without HTML escaping.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into n.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// Encode writes n to w as JSON. A non-empty indent pretty-prints the output.
func Encode(w io.Writer, n *Node, indent string) error {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return err
	}
	if indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, buf.Bytes(), "", indent); err != nil {
			return err
		}
		buf = pretty
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	switch n.Kind() {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if n.num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(n.num.String())
		}
	case String:
		return writeString(buf, n.str)
	case Object:
		buf.WriteByte('{')
		first := true
		for pair := n.obj.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeString(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeNode(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, item := range n.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("document: cannot encode %s", n.Kind())
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.WriteString(strings.TrimSuffix(tmp.String(), "\n"))
	return nil
}

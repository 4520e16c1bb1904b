package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// ErrMissingField is returned when a required field is absent or null.
var ErrMissingField = errors.New("missing required field")

// FieldError describes a decoding failure at a field path such as
// "balances[1].free". It never carries request data.
type FieldError struct {
	Path string
	Err  error
}

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Fields is one decoded JSON object whose members are decoded on demand,
// each with its own typed failure.
type Fields struct {
	path    string
	members map[string]json.RawMessage
}

// DecodeObject parses data as a JSON object. path prefixes field names in
// errors; use "" for the document root.
func DecodeObject(data []byte, path string) (*Fields, error) {
	if !isShape(data, '{') {
		return nil, &FieldError{Path: rootName(path), Err: fmt.Errorf("expected object, got %s", shapeOf(data))}
	}
	var members map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &members); err != nil {
		return nil, &FieldError{Path: rootName(path), Err: fmt.Errorf("expected object: %w", err)}
	}
	return &Fields{path: path, members: members}, nil
}

// DecodeArray parses data as a JSON array and returns its raw elements.
func DecodeArray(data []byte, path string) ([]json.RawMessage, error) {
	if !isShape(data, '[') {
		return nil, &FieldError{Path: rootName(path), Err: fmt.Errorf("expected array, got %s", shapeOf(data))}
	}
	var items []json.RawMessage
	if err := sonic.Unmarshal(data, &items); err != nil {
		return nil, &FieldError{Path: rootName(path), Err: fmt.Errorf("expected array: %w", err)}
	}
	return items, nil
}

// Path returns the full path of the named member.
func (f *Fields) Path(name string) string {
	if f.path == "" {
		return name
	}
	return f.path + "." + name
}

// Has reports whether name is present and not null.
func (f *Fields) Has(name string) bool {
	raw, ok := f.members[name]
	return ok && !isNull(raw)
}

func (f *Fields) raw(name string) (json.RawMessage, error) {
	raw, ok := f.members[name]
	if !ok || isNull(raw) {
		return nil, &FieldError{Path: f.Path(name), Err: ErrMissingField}
	}
	return raw, nil
}

// String decodes a required string member.
func (f *Fields) String(name string) (string, error) {
	raw, err := f.raw(name)
	if err != nil {
		return "", err
	}
	var s string
	if !isShape(raw, '"') || sonic.Unmarshal(raw, &s) != nil {
		return "", &FieldError{Path: f.Path(name), Err: fmt.Errorf("expected string, got %s", shapeOf(raw))}
	}
	return s, nil
}

// Bool decodes a required boolean member.
func (f *Fields) Bool(name string) (bool, error) {
	raw, err := f.raw(name)
	if err != nil {
		return false, err
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &FieldError{Path: f.Path(name), Err: fmt.Errorf("expected boolean, got %s", shapeOf(raw))}
}

// Int decodes a required integer member.
func (f *Fields) Int(name string) (int64, error) {
	raw, err := f.raw(name)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
	if perr != nil {
		return 0, &FieldError{Path: f.Path(name), Err: fmt.Errorf("expected integer, got %s", shapeOf(raw))}
	}
	return v, nil
}

// OptionalInt decodes an integer member that may be absent.
func (f *Fields) OptionalInt(name string) (int64, bool, error) {
	if !f.Has(name) {
		return 0, false, nil
	}
	v, err := f.Int(name)
	return v, err == nil, err
}

// Number decodes a required decimal string member through ParseNumber.
func (f *Fields) Number(name string) (float64, error) {
	s, err := f.String(name)
	if err != nil {
		return 0, err
	}
	v, err := ParseNumber(s)
	if err != nil {
		return 0, &FieldError{Path: f.Path(name), Err: err}
	}
	return v, nil
}

// Array decodes a required array member and returns its raw elements.
func (f *Fields) Array(name string) ([]json.RawMessage, error) {
	raw, err := f.raw(name)
	if err != nil {
		return nil, err
	}
	return DecodeArray(raw, f.Path(name))
}

// IndexPath returns the path of element i of the named array member.
func (f *Fields) IndexPath(name string, i int) string {
	return f.Path(name) + "[" + strconv.Itoa(i) + "]"
}

func rootName(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isShape(raw []byte, first byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == first
}

// shapeOf names the JSON kind of raw without echoing its content.
func shapeOf(raw []byte) string {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return "empty input"
	}
	switch c := t[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	case c == '-' || (c >= '0' && c <= '9'):
		return "number"
	default:
		return "non-JSON content"
	}
}

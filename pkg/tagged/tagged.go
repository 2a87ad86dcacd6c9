// Package tagged reads and writes JSON objects discriminated by a "type" field.
package tagged

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jwebster45206/survival-engine/pkg/suggest"
)

// ErrUnknownField is returned by As when the object carries a field the
// variant does not declare.
var ErrUnknownField = errors.New("unknown field")

// Type extracts the "type" discriminator from a JSON object.
func Type(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Type == "" {
		return "", fmt.Errorf("missing \"type\" in %s", data)
	}
	return head.Type, nil
}

// Encode marshals v and adds the "type" field. v must marshal to an object.
func Encode(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	fields["type"], err = json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// As decodes data into a fresh T, ignoring the "type" field. Any other field
// T does not declare is an error.
func As[T any](data []byte) (T, error) {
	var v T
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return v, err
	}
	delete(fields, "type")

	known := FieldNames(reflect.TypeOf(v))
	for name := range fields {
		if !contains(known, name) {
			return v, fmt.Errorf("%w %q%s", ErrUnknownField, name, suggest.Hint(name, known))
		}
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return v, err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	err = dec.Decode(&v)
	return v, err
}

// FieldNames lists the JSON names of a struct type's exported fields.
func FieldNames(t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

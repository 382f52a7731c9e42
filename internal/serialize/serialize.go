// Package serialize converts typed resource values into CloudFormation
// property maps.
package serialize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Resource serializes a resource struct to its property map. Names come from
// JSON tags; zero values are omitted; json.Marshaler values (intrinsics,
// AttrRef, principals) are embedded as their decoded JSON.
func Resource(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("serialize: nil %T", v)
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("serialize: expected struct, got %s", val.Kind())
	}

	return structFields(val)
}

// Properties serializes a resource and normalizes the result through a JSON
// round trip, so numbers become float64 and intrinsics become plain maps.
// The result compares equal to the same template loaded back from disk.
func Properties(v any) (map[string]any, error) {
	props, err := Resource(v)
	if err != nil {
		return nil, err
	}
	return Normalize(props)
}

// Value serializes an arbitrary value (an output value, a default) to its
// JSON-compatible form.
func Value(v any) (any, error) {
	return serializeValue(reflect.ValueOf(v))
}

// Normalize round-trips props through encoding/json.
func Normalize(props map[string]any) (map[string]any, error) {
	if len(props) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func structFields(val reflect.Value) (map[string]any, error) {
	props := make(map[string]any)
	for _, field := range reflect.VisibleFields(val.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := propertyName(field)
		fv := val.FieldByIndex(field.Index)
		if name == "-" || omit(fv) {
			continue
		}
		out, err := serializeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if out != nil {
			props[name] = out
		}
	}
	return props, nil
}

// propertyName is the JSON tag name, or the Go field name when untagged.
func propertyName(field reflect.StructField) string {
	if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" {
		return name
	}
	return field.Name
}

// omit reports whether a field is left out of the property map: nil, empty
// collections, scalar zero values, and structs that say they are zero.
func omit(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		if z, ok := v.Interface().(interface{ IsZero() bool }); ok {
			return z.IsZero()
		}
		return false
	default:
		return v.IsZero()
	}
}

// serializeValue converts v to plain JSON-compatible values.
func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, nil
	}
	if v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			return marshalValue(m)
		}
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return serializeValue(v.Elem())
	case reflect.Struct:
		return structFields(v)
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil, nil
		}
		list := make([]any, v.Len())
		for i := range list {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			list[i] = elem
		}
		return list, nil
	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		m := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			m[fmt.Sprint(iter.Key().Interface())] = elem
		}
		return m, nil
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", v.Kind())
}

func marshalValue(m json.Marshaler) (any, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

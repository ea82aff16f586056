package state

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// splitPath turns "scene.currentCameraAngle" into its segments.
// Empty paths and empty segments are rejected.
func splitPath(path string) ([]string, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, false
		}
	}
	return segments, true
}

// jsonName returns the json field name of f, or "" when the field is not serialized.
func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}

// child descends one segment from v. Structs resolve json names, string-keyed maps
// resolve keys and slices resolve decimal indexes.
func child(v reflect.Value, seg string) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if jsonName(t.Field(i)) == seg {
				return v.Field(i), true
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String || v.IsNil() {
			return reflect.Value{}, false
		}
		got := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
		if got.IsValid() {
			return got, true
		}
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err == nil && i >= 0 && i < v.Len() {
			return v.Index(i), true
		}
	}
	return reflect.Value{}, false
}

// resolve walks all segments from root.
func resolve(root reflect.Value, segments []string) (reflect.Value, bool) {
	v := root
	for _, seg := range segments {
		var ok bool
		if v, ok = child(v, seg); !ok {
			return reflect.Value{}, false
		}
	}
	return v, true
}

// assign sets the final segment on parent, converting value to the target type.
// It never creates containers: the slot must exist (struct field, slice index) or the
// parent must be a non-nil map.
func assign(parent reflect.Value, seg string, value any) error {
	for parent.Kind() == reflect.Pointer || parent.Kind() == reflect.Interface {
		if parent.IsNil() {
			return domain.ErrPathNotFound
		}
		parent = parent.Elem()
	}

	switch parent.Kind() {
	case reflect.Map:
		if parent.IsNil() || parent.Type().Key().Kind() != reflect.String {
			return domain.ErrPathNotFound
		}
		converted, err := convert(value, parent.Type().Elem())
		if err != nil {
			return err
		}
		parent.SetMapIndex(reflect.ValueOf(seg).Convert(parent.Type().Key()), converted)
		return nil
	case reflect.Struct, reflect.Slice, reflect.Array:
		slot, ok := child(parent, seg)
		if !ok {
			return domain.ErrPathNotFound
		}
		if !slot.CanSet() {
			return fmt.Errorf("%w: %q is not settable", domain.ErrTypeMismatch, seg)
		}
		converted, err := convert(value, slot.Type())
		if err != nil {
			return err
		}
		slot.Set(converted)
		return nil
	}
	return domain.ErrPathNotFound
}

// convert turns value into a reflect.Value of type t.
// Numbers convert between numeric kinds when no precision is lost, strings convert
// between named string types, and everything else goes through mapstructure.
func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(v.Kind()) && isNumber(t.Kind()) {
		return convertNumber(v, t)
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}

	out := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
		Result:           out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(value); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", domain.ErrTypeMismatch, err)
	}
	return out.Elem(), nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	return isNumber(k) && k != reflect.Float32 && k != reflect.Float64
}

func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if isInteger(t.Kind()) && (v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64) {
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return reflect.Value{}, fmt.Errorf("%w: %v is not an integer", domain.ErrTypeMismatch, f)
		}
	}
	return v.Convert(t), nil
}

// Package merge composes partial AI output with previously stored profile data.
package merge

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Profile merges incoming into existing and returns a new map.
//
// Keys whose incoming value is nil, "" or an empty array carry no information and
// are skipped. Arrays present on both sides are unioned (existing order first,
// duplicates dropped). Everything else in incoming overwrites existing.
// Neither input is modified.
func Profile(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		if isEmpty(v) {
			continue
		}
		newArr, newIsArr := asSlice(v)
		oldArr, oldIsArr := asSlice(out[k])
		if newIsArr && oldIsArr {
			out[k] = union(oldArr, newArr)
			continue
		}
		out[k] = v
	}
	return out
}

// Structs merges two JSON-serializable values through their map form and
// decodes the result into dst.
func Structs(existing, incoming any, dst any) error {
	em, err := toMap(existing)
	if err != nil {
		return err
	}
	im, err := toMap(incoming)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(Profile(em, im))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func toMap(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("merge: marshal: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("merge: expected a JSON object: %w", err)
	}
	return m, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	if arr, ok := asSlice(v); ok {
		return len(arr) == 0
	}
	return false
}

// asSlice accepts []any as produced by encoding/json as well as typed slices.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if arr, ok := v.([]any); ok {
		return arr, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func union(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]any{a, b} {
		for _, v := range list {
			k := identity(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// identity keys values by their JSON encoding so objects compare structurally.
func identity(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(raw)
}

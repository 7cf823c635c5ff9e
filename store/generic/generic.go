// Package generic holds the helpers shared by the schema-less metadata
// stores. Every store keeps values in their JSON form, so a value written
// through one store compares equal to the same value read back from another.
package generic

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/mwantia/didmeta/data"
)

// Normalize converts value into the shape it has after a JSON round trip.
func Normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: value %v is not JSON serialisable: %v", data.ErrInvalidMetadata, value, err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalidMetadata, err)
	}
	return out, nil
}

// Merge normalizes every value of update into meta.
func Merge(meta map[string]any, update map[string]any) error {
	for key, value := range update {
		if key == "" {
			return fmt.Errorf("%w: empty key", data.ErrInvalidMetadata)
		}

		v, err := Normalize(value)
		if err != nil {
			return err
		}
		meta[key] = v
	}
	return nil
}

// Matches reports whether meta holds every filter key with an equal value.
func Matches(meta map[string]any, filters data.Filters) (bool, error) {
	for key, want := range filters {
		got, ok := meta[key]
		if !ok {
			return false, nil
		}

		v, err := Normalize(want)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(got, v) {
			return false, nil
		}
	}
	return true, nil
}

// SortedKeys returns the filter keys in a stable order.
func SortedKeys(filters data.Filters) []string {
	return slices.Sorted(maps.Keys(filters))
}

// Page applies the offset and limit of opts to results.
func Page(results []*data.ListResult, opts *data.ListOptions) []*data.ListResult {
	if opts == nil {
		return results
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return []*data.ListResult{}
		}
		results = results[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(results) {
		results = results[:opts.Limit]
	}
	return results
}

// SplitRef parses a "scope/name" path, as used by key-value backends.
func SplitRef(path string) (data.DIDRef, bool) {
	scope, name, ok := strings.Cut(path, "/")
	if !ok || scope == "" || name == "" {
		return data.DIDRef{}, false
	}
	return data.DIDRef{Scope: scope, Name: name}, true
}

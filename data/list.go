package data

import (
	"fmt"
	"maps"
	"strings"
)

// ListType selects which DID types a listing returns.
type ListType string

const (
	ListTypeAll        ListType = "all"
	ListTypeCollection ListType = "collection"
	ListTypeContainer  ListType = "container"
	ListTypeDataset    ListType = "dataset"
	ListTypeFile       ListType = "file"
)

// ParseListType validates a listing type; empty defaults to collection.
func ParseListType(s string) (ListType, error) {
	switch t := ListType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ListTypeCollection, nil
	case ListTypeAll, ListTypeCollection, ListTypeContainer, ListTypeDataset, ListTypeFile:
		return t, nil
	}

	return "", fmt.Errorf("%w: valid types are all, collection, container, dataset, file", ErrUnsupportedOperation)
}

// Types returns the DID types matched by this listing type.
func (t ListType) Types() []DIDType {
	switch t {
	case ListTypeAll:
		return []DIDType{DIDTypeContainer, DIDTypeDataset, DIDTypeFile}
	case ListTypeContainer:
		return []DIDType{DIDTypeContainer}
	case ListTypeDataset:
		return []DIDType{DIDTypeDataset}
	case ListTypeFile:
		return []DIDType{DIDTypeFile}
	default:
		return []DIDType{DIDTypeContainer, DIDTypeDataset}
	}
}

// Filters maps metadata keys (or listing pseudo-keys) to the value to match.
type Filters map[string]any

// With returns a copy of the filters with key set to value.
func (f Filters) With(key string, value any) Filters {
	cp := make(Filters, len(f)+1)
	maps.Copy(cp, f)
	cp[key] = value
	return cp
}

// ListOptions controls paging and output shape of a listing.
type ListOptions struct {
	Type      ListType `json:"type"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
	Long      bool     `json:"long"`
	Recursive bool     `json:"recursive"`
}

// ListResult is one listed identifier. Bytes and Length are only populated
// for long listings from the hardcoded store.
type ListResult struct {
	Scope  string  `json:"scope"`
	Name   string  `json:"name"`
	Type   DIDType `json:"did_type,omitempty"`
	Bytes  *int64  `json:"bytes,omitempty"`
	Length *int64  `json:"length,omitempty"`
}

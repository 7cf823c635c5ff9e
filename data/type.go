package data

import (
	"fmt"
	"strings"
)

// DIDType identifies the kind of data identifier.
type DIDType string

// Stored single-letter codes, matching the did_type column.
const (
	DIDTypeFile      DIDType = "F"
	DIDTypeDataset   DIDType = "D"
	DIDTypeContainer DIDType = "C"
	DIDTypeArchive   DIDType = "A"
)

func (t DIDType) String() string {
	switch t {
	case DIDTypeFile:
		return "FILE"
	case DIDTypeDataset:
		return "DATASET"
	case DIDTypeContainer:
		return "CONTAINER"
	case DIDTypeArchive:
		return "ARCHIVE"
	default:
		return "UNKNOWN"
	}
}

// IsCollection reports whether the type can have children.
func (t DIDType) IsCollection() bool {
	return t == DIDTypeDataset || t == DIDTypeContainer
}

// ParseDIDType accepts both the long names and the single-letter codes.
func ParseDIDType(s string) (DIDType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FILE":
		return DIDTypeFile, nil
	case "D", "DATASET":
		return DIDTypeDataset, nil
	case "C", "CONTAINER":
		return DIDTypeContainer, nil
	case "A", "ARCHIVE":
		return DIDTypeArchive, nil
	}

	return "", fmt.Errorf("%w: unknown did type '%s'", ErrInvalidObject, s)
}

package data

import (
	"fmt"
	"strings"
)

// KeyType restricts which kind of DID a registered generic key applies to.
type KeyType string

const (
	KeyTypeAll        KeyType = "ALL"
	KeyTypeCollection KeyType = "COLLECTION"
	KeyTypeFile       KeyType = "FILE"
	KeyTypeDataset    KeyType = "DATASET"
	KeyTypeContainer  KeyType = "CONTAINER"
	KeyTypeDerived    KeyType = "DERIVED"
)

// ParseKeyType resolves the accepted aliases. Archives cannot carry keys.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALL":
		return KeyTypeAll, nil
	case "COLLECTION":
		return KeyTypeCollection, nil
	case "F", "FILE":
		return KeyTypeFile, nil
	case "D", "DATASET":
		return KeyTypeDataset, nil
	case "C", "CONTAINER":
		return KeyTypeContainer, nil
	case "DERIVED":
		return KeyTypeDerived, nil
	}

	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedKeyType, s)
}

// Allows reports whether a key of this type may be set on a DID of didType.
// Derived keys are computed from files for collections.
func (k KeyType) Allows(didType DIDType) bool {
	switch k {
	case KeyTypeAll:
		return didType != DIDTypeArchive
	case KeyTypeCollection, KeyTypeDerived:
		return didType.IsCollection()
	case KeyTypeFile:
		return didType == DIDTypeFile
	case KeyTypeDataset:
		return didType == DIDTypeDataset
	case KeyTypeContainer:
		return didType == DIDTypeContainer
	}
	return false
}

// ValueType constrains the JSON type of a registered key's values.
type ValueType string

const (
	ValueTypeAny    ValueType = ""
	ValueTypeString ValueType = "string"
	ValueTypeInt    ValueType = "int"
	ValueTypeFloat  ValueType = "float"
	ValueTypeBool   ValueType = "bool"
	ValueTypeList   ValueType = "list"
	ValueTypeMap    ValueType = "map"
)

// ParseValueType resolves the accepted value type names.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ValueTypeAny, nil
	case "str", "string", "unicode":
		return ValueTypeString, nil
	case "int", "long", "integer":
		return ValueTypeInt, nil
	case "float", "number":
		return ValueTypeFloat, nil
	case "bool", "boolean":
		return ValueTypeBool, nil
	case "list", "tuple", "array":
		return ValueTypeList, nil
	case "dict", "map", "object":
		return ValueTypeMap, nil
	}

	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedValueType, s)
}

// Matches reports whether value is of this value type.
func (v ValueType) Matches(value any) bool {
	switch v {
	case ValueTypeAny:
		return true
	case ValueTypeString:
		_, ok := value.(string)
		return ok
	case ValueTypeInt:
		_, ok := ToInt64(value)
		if !ok {
			return false
		}
		_, isString := value.(string)
		return !isString
	case ValueTypeFloat:
		switch value.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case ValueTypeBool:
		_, ok := value.(bool)
		return ok
	case ValueTypeList:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case ValueTypeMap:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}

// KeyDefinition registers an allowed generic key under a fixed-key policy.
type KeyDefinition struct {
	Key         string    `json:"key"`
	KeyType     KeyType   `json:"key_type"`
	ValueType   ValueType `json:"value_type,omitempty"`
	ValueRegexp string    `json:"value_regexp,omitempty"`
}

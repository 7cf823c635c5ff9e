package data

import (
	"fmt"
	"strings"
	"time"
)

// DIDRef names a data identifier by scope and name.
type DIDRef struct {
	Scope string `json:"scope"`
	Name  string `json:"name"`
}

func (r DIDRef) String() string {
	return r.Scope + ":" + r.Name
}

// DID is the registration record of a data identifier. Meta carries any
// additional fixed columns (project, datatype, ...) set at registration.
type DID struct {
	Scope   string         `json:"scope"`
	Name    string         `json:"name"`
	Type    DIDType        `json:"did_type"`
	Account string         `json:"account"`
	Bytes   int64          `json:"bytes"`
	Length  int64          `json:"length"`
	Events  int64          `json:"events"`
	GUID    string         `json:"guid,omitempty"`
	Adler32 string         `json:"adler32,omitempty"`
	MD5     string         `json:"md5,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Ref returns the scope/name pair of this identifier.
func (d *DID) Ref() DIDRef {
	return DIDRef{Scope: d.Scope, Name: d.Name}
}

// Child is one entry of a collection's content, carrying the denormalised
// copies held on the containment edge.
type Child struct {
	Scope   string  `json:"scope"`
	Name    string  `json:"name"`
	Type    DIDType `json:"did_type"`
	Bytes   int64   `json:"bytes"`
	Events  int64   `json:"events"`
	GUID    string  `json:"guid,omitempty"`
	Adler32 string  `json:"adler32,omitempty"`
}

// DIDColumns lists every fixed column of the dids table in storage order.
var DIDColumns = []string{
	"scope",
	"name",
	"did_type",
	"account",
	"bytes",
	"length",
	"events",
	"guid",
	"adler32",
	"md5",
	"project",
	"datatype",
	"run_number",
	"stream_name",
	"prod_step",
	"version",
	"campaign",
	"task_id",
	"panda_id",
	"lumiblocknr",
	"provenance",
	"phys_group",
	"transient",
	"is_archive",
	"constituent",
	"access_cnt",
	"suppressed",
	"created_at",
	"updated_at",
	"expired_at",
	"accessed_at",
	"closed_at",
	"eol_at",
	"deleted_at",
}

// Columns that identify the row and may never be rewritten through a metadata update.
var immutableColumns = map[string]struct{}{
	"scope":    {},
	"name":     {},
	"did_type": {},
}

var didColumnSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(DIDColumns))
	for _, column := range DIDColumns {
		set[column] = struct{}{}
	}
	return set
}()

// IsColumn reports whether key names a fixed column of the dids table.
func IsColumn(key string) bool {
	_, ok := didColumnSet[key]
	return ok
}

// IsMutableColumn reports whether key names a column that a metadata update may write.
func IsMutableColumn(key string) bool {
	if _, ok := immutableColumns[key]; ok {
		return false
	}
	return IsColumn(key)
}

// ParseDIDRef splits "scope:name" at the first colon.
func ParseDIDRef(s string) (DIDRef, error) {
	scope, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || scope == "" || name == "" {
		return DIDRef{}, fmt.Errorf("%w: '%s' is not of the form scope:name", ErrInvalidObject, s)
	}
	return DIDRef{Scope: scope, Name: name}, nil
}

package store

import "slices"

// Capability represents a feature that a store can provide.
type Capability string

const (
	// The store can read and write a whole attribute mapping per DID.
	CapabilityGenericMetadata Capability = "generic_metadata"
	// The store can filter DIDs by attribute equality.
	CapabilityGenericQuery Capability = "generic_query"
	// The store takes part in the caller's SQL transaction.
	CapabilityTransactional Capability = "transactional"
)

// Capabilities describes what a store supports.
type Capabilities struct {
	Capabilities []Capability `json:"capabilities"`
	Engine       string       `json:"engine,omitempty"`
	Version      string       `json:"version,omitempty"`
}

// Contains checks if a capability is supported.
func (c *Capabilities) Contains(cap Capability) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Capabilities, cap)
}

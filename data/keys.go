package data

// KeyClass tells which store owns a metadata key.
type KeyClass int

const (
	KeyClassGeneric KeyClass = iota
	KeyClassHardcoded
)

func (c KeyClass) String() string {
	if c == KeyClassHardcoded {
		return "HARDCODED"
	}
	return "GENERIC"
}

// Keys with a dedicated update policy in the hardcoded store.
const (
	KeyLifetime = "lifetime"
	KeyGUID     = "guid"
	KeyEvents   = "events"
	KeyAdler32  = "adler32"
	KeyBytes    = "bytes"
)

// Pseudo-keys only understood while listing.
const (
	FilterCreatedBefore = "created_before"
	FilterCreatedAfter  = "created_after"
	FilterLength        = "length"
	FilterLengthGT      = "length.gt"
	FilterLengthLT      = "length.lt"
	FilterLengthGTE     = "length.gte"
	FilterLengthLTE     = "length.lte"
	FilterName          = "name"
)

var hardcodedKeys = map[string]struct{}{
	KeyLifetime:   {},
	KeyGUID:       {},
	KeyEvents:     {},
	KeyAdler32:    {},
	KeyBytes:      {},
	"length":      {},
	"md5":         {},
	"deleted_at":  {},
	"project":     {},
	"datatype":    {},
	"run_number":  {},
	"stream_name": {},
	"prod_step":   {},
	"version":     {},
	"campaign":    {},
	"task_id":     {},
	"panda_id":    {},
	"lumiblocknr": {},
	"provenance":  {},
	"phys_group":  {},
	"transient":   {},
	"accessed_at": {},
	"closed_at":   {},
	"eol_at":      {},
	"is_archive":  {},
	"constituent": {},
	"access_cnt":  {},

	FilterCreatedBefore: {},
	FilterCreatedAfter:  {},
	FilterLengthGT:      {},
	FilterLengthLT:      {},
	FilterLengthGTE:     {},
	FilterLengthLTE:     {},
	FilterName:          {},
}

// Classify maps a metadata key onto the store that owns it. A key is
// hardcoded when it is registered above or names a dids column.
func Classify(key string) KeyClass {
	if _, ok := hardcodedKeys[key]; ok {
		return KeyClassHardcoded
	}
	if IsColumn(key) {
		return KeyClassHardcoded
	}
	return KeyClassGeneric
}

// IsHardcoded is shorthand for Classify(key) == KeyClassHardcoded.
func IsHardcoded(key string) bool {
	return Classify(key) == KeyClassHardcoded
}

// IsListFilter reports whether key is a listing-only pseudo-key.
func IsListFilter(key string) bool {
	switch key {
	case FilterCreatedBefore, FilterCreatedAfter,
		FilterLength, FilterLengthGT, FilterLengthLT, FilterLengthGTE, FilterLengthLTE:
		return true
	}
	return false
}

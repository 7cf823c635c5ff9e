package didmeta

import (
	"fmt"
	"strings"

	"github.com/mwantia/didmeta/data"
)

// Mode selects which stores Get reads from.
type Mode string

const (
	ModeAll       Mode = "all"
	ModeHardcoded Mode = "hardcoded"
	ModeGeneric   Mode = "generic"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAll, nil
	case ModeAll, ModeHardcoded, ModeGeneric:
		return m, nil
	}

	return "", fmt.Errorf("%w: unknown plugin mode '%s'", data.ErrUnsupportedOperation, s)
}

// Package builtin provides the default metadata commands.
package builtin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mwantia/didmeta/cmd"
	"github.com/mwantia/didmeta/data"
)

// All returns every builtin command.
func All() []cmd.Command {
	return []cmd.Command{
		&GetCommand{},
		&SetCommand{},
		&DeleteCommand{},
		&ListCommand{},
		&AddKeyCommand{},
		&DelKeyCommand{},
		&KeysCommand{},
		&AddValueCommand{},
		&ValuesCommand{},
	}
}

func usageError(c cmd.Command) (int, error) {
	return 2, fmt.Errorf("usage: %s", c.Usage())
}

func parseDID(args *cmd.CommandArgs) (data.DIDRef, error) {
	return data.ParseDIDRef(args.Args[0])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/didmeta"
	"github.com/mwantia/didmeta/cmd"
)

// GetCommand prints the metadata of a DID or a single value.
type GetCommand struct{}

func (c *GetCommand) Name() string { return "get" }

func (c *GetCommand) Description() string {
	return "Print the metadata of a DID"
}

func (c *GetCommand) Usage() string {
	return "get [-m all|hardcoded|generic] [-k key] scope:name"
}

func (c *GetCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(c)
	}
	ref, err := parseDID(args)
	if err != nil {
		return 1, err
	}

	if key := args.String("key", ""); key != "" {
		value, err := api.GetValue(ctx, ref.Scope, ref.Name, key)
		if err != nil {
			return 1, err
		}
		return 0, writeJSON(writer, value)
	}

	mode, err := didmeta.ParseMode(args.String("mode", string(didmeta.ModeAll)))
	if err != nil {
		return 1, fmt.Errorf("invalid mode: %w", err)
	}
	meta, err := api.Get(ctx, ref.Scope, ref.Name, mode)
	if err != nil {
		return 1, err
	}
	return 0, writeJSON(writer, meta)
}

func (c *GetCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"mode": {Name: "mode", Short: "m", Type: "string", Description: "Stores to read from"},
			"key":  {Name: "key", Short: "k", Type: "string", Description: "Print a single key"},
		},
	}
}

package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/didmeta/cmd"
)

// SetCommand writes one or more metadata pairs in a single transaction.
type SetCommand struct{}

func (c *SetCommand) Name() string { return "set" }

func (c *SetCommand) Description() string {
	return "Set metadata keys on a DID"
}

func (c *SetCommand) Usage() string {
	return "set [-r] scope:name key=value [key=value...]"
}

func (c *SetCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return usageError(c)
	}
	ref, err := parseDID(args)
	if err != nil {
		return 1, err
	}
	meta, err := cmd.ParsePairs(args.Args[1:])
	if err != nil {
		return 2, err
	}

	if err := api.SetMany(ctx, ref.Scope, ref.Name, meta, args.Bool("recursive")); err != nil {
		return 1, err
	}
	fmt.Fprintf(writer, "updated %d key(s) on %s\n", len(meta), ref)
	return 0, nil
}

func (c *SetCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"recursive": {Name: "recursive", Short: "r", Type: "bool", Description: "Apply column updates to children"},
		},
	}
}

// DeleteCommand removes generic metadata keys.
type DeleteCommand struct{}

func (c *DeleteCommand) Name() string { return "delete" }

func (c *DeleteCommand) Description() string {
	return "Delete generic metadata keys from a DID"
}

func (c *DeleteCommand) Usage() string {
	return "delete scope:name key [key...]"
}

func (c *DeleteCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return usageError(c)
	}
	ref, err := parseDID(args)
	if err != nil {
		return 1, err
	}

	for _, key := range args.Args[1:] {
		if err := api.Delete(ctx, ref.Scope, ref.Name, key); err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "deleted %s from %s\n", key, ref)
	}
	return 0, nil
}

func (c *DeleteCommand) GetFlags() *cmd.CommandFlagSet { return nil }

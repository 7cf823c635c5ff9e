package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mwantia/didmeta/cmd"
)

// AddKeyCommand registers a metadata key in the schema registry.
type AddKeyCommand struct{}

func (c *AddKeyCommand) Name() string { return "add-key" }

func (c *AddKeyCommand) Description() string {
	return "Register a metadata key"
}

func (c *AddKeyCommand) Usage() string {
	return "add-key [-t key-type] [-v value-type] [-e regexp] key"
}

func (c *AddKeyCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(c)
	}
	key := args.Args[0]
	err := api.Registry().AddKey(ctx, key, args.String("key-type", "all"), args.String("value-type", ""), args.String("regexp", ""))
	if err != nil {
		return 1, err
	}
	fmt.Fprintf(writer, "added key %s\n", key)
	return 0, nil
}

func (c *AddKeyCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"key-type":   {Name: "key-type", Short: "t", Type: "string", Description: "DID types the key applies to"},
			"value-type": {Name: "value-type", Short: "v", Type: "string", Description: "Required value type"},
			"regexp":     {Name: "regexp", Short: "e", Type: "string", Description: "Pattern values must match"},
		},
	}
}

// DelKeyCommand removes a metadata key from the registry.
type DelKeyCommand struct{}

func (c *DelKeyCommand) Name() string { return "del-key" }

func (c *DelKeyCommand) Description() string {
	return "Remove a registered metadata key"
}

func (c *DelKeyCommand) Usage() string { return "del-key key" }

func (c *DelKeyCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(c)
	}
	if err := api.Registry().DelKey(ctx, args.Args[0]); err != nil {
		return 1, err
	}
	fmt.Fprintf(writer, "removed key %s\n", args.Args[0])
	return 0, nil
}

func (c *DelKeyCommand) GetFlags() *cmd.CommandFlagSet { return nil }

// KeysCommand prints the registered keys.
type KeysCommand struct{}

func (c *KeysCommand) Name() string { return "keys" }

func (c *KeysCommand) Description() string {
	return "List registered metadata keys"
}

func (c *KeysCommand) Usage() string { return "keys" }

func (c *KeysCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	defs, err := api.Registry().ListKeys(ctx)
	if err != nil {
		return 1, err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Key, def.KeyType, def.ValueType, def.ValueRegexp)
	}
	return 0, tw.Flush()
}

func (c *KeysCommand) GetFlags() *cmd.CommandFlagSet { return nil }

// AddValueCommand adds an allowed value for a key.
type AddValueCommand struct{}

func (c *AddValueCommand) Name() string { return "add-value" }

func (c *AddValueCommand) Description() string {
	return "Add an allowed value to a registered key"
}

func (c *AddValueCommand) Usage() string { return "add-value key value" }

func (c *AddValueCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return usageError(c)
	}
	if err := api.Registry().AddValue(ctx, args.Args[0], args.Args[1]); err != nil {
		return 1, err
	}
	fmt.Fprintf(writer, "added value %s to %s\n", args.Args[1], args.Args[0])
	return 0, nil
}

func (c *AddValueCommand) GetFlags() *cmd.CommandFlagSet { return nil }

// ValuesCommand prints the allowed values of a key.
type ValuesCommand struct{}

func (c *ValuesCommand) Name() string { return "values" }

func (c *ValuesCommand) Description() string {
	return "List the allowed values of a key"
}

func (c *ValuesCommand) Usage() string { return "values key" }

func (c *ValuesCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(c)
	}
	values, err := api.Registry().ListValues(ctx, args.Args[0])
	if err != nil {
		return 1, err
	}
	for _, v := range values {
		fmt.Fprintln(writer, v)
	}
	return 0, nil
}

func (c *ValuesCommand) GetFlags() *cmd.CommandFlagSet { return nil }

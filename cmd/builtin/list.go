package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mwantia/didmeta/cmd"
	"github.com/mwantia/didmeta/data"
)

// ListCommand lists the DIDs of a scope matching metadata filters.
type ListCommand struct{}

func (c *ListCommand) Name() string { return "list" }

func (c *ListCommand) Description() string {
	return "List DIDs in a scope by metadata"
}

func (c *ListCommand) Usage() string {
	return "list [-t type] [-f key=value...] [-n limit] [-o offset] [-l] [-r] scope"
}

func (c *ListCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(c)
	}

	pairs, err := cmd.ParsePairs(args.Strings("filter"))
	if err != nil {
		return 2, err
	}
	listType, err := data.ParseListType(args.String("type", ""))
	if err != nil {
		return 1, err
	}
	opts := &data.ListOptions{
		Type:      listType,
		Limit:     args.Int("limit", 0),
		Offset:    args.Int("offset", 0),
		Long:      args.Bool("long"),
		Recursive: args.Bool("recursive"),
	}

	results, err := api.List(ctx, args.Args[0], data.Filters(pairs), opts)
	if err != nil {
		return 1, err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	for _, r := range results {
		if !opts.Long {
			fmt.Fprintf(tw, "%s:%s\n", r.Scope, r.Name)
			continue
		}
		fmt.Fprintf(tw, "%s:%s\t%s\t%s\t%s\n", r.Scope, r.Name, r.Type, optional(r.Bytes), optional(r.Length))
	}
	return 0, tw.Flush()
}

func (c *ListCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"type":      {Name: "type", Short: "t", Type: "string", Description: "all, collection, container, dataset or file"},
			"filter":    {Name: "filter", Short: "f", Type: "string", Multiple: true, Description: "Filter as key=value"},
			"limit":     {Name: "limit", Short: "n", Type: "int", Description: "Maximum number of results"},
			"offset":    {Name: "offset", Short: "o", Type: "int", Description: "Results to skip"},
			"long":      {Name: "long", Short: "l", Type: "bool", Description: "Print type, bytes and length"},
			"recursive": {Name: "recursive", Short: "r", Type: "bool", Description: "Descend into matched collections"},
		},
	}
}

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

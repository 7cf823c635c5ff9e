package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwantia/didmeta"
	"github.com/mwantia/didmeta/cmd"
	"github.com/mwantia/didmeta/cmd/builtin"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/notify"
)

var globalFlags = &cmd.CommandFlagSet{
	Flags: map[string]*cmd.CommandFlag{
		"database":   {Name: "database", Short: "d", Type: "string", Default: "sqlite://didmeta.db", Description: "sqlite:// or postgres:// address"},
		"generic":    {Name: "generic", Short: "g", Type: "string", Description: "Generic metadata store address"},
		"log-level":  {Name: "log-level", Type: "string", Default: "warn", Description: "Log level"},
		"log-file":   {Name: "log-file", Type: "string", Description: "Write logs to this file"},
		"key-policy": {Name: "key-policy", Type: "bool", Description: "Validate generic keys against the registry"},
		"kafka":      {Name: "kafka", Type: "string", Multiple: true, Description: "Kafka broker for change events"},
		"topic":      {Name: "topic", Type: "string", Description: "Kafka topic for change events"},
		"help":       {Name: "help", Short: "h", Type: "bool", Description: "Show usage"},
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, raw []string) int {
	global, err := cmd.NewGlobalParser(globalFlags).Parse(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if global.Bool("help") || len(global.Args) == 0 {
		usage()
		return 0
	}

	opts, err := options(global)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	facade, err := didmeta.Open(ctx, global.String("database", ""), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open metadata store: %v\n", err)
		return 1
	}
	defer facade.Close(context.WithoutCancel(ctx))

	manager, err := cmd.NewManager(facade, builtin.All()...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	code, err := manager.Execute(ctx, os.Stdout, global.Args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}

func options(global *cmd.CommandArgs) ([]didmeta.Option, error) {
	level, err := log.Parse(global.String("log-level", "warn"))
	if err != nil {
		return nil, err
	}

	opts := []didmeta.Option{didmeta.WithLogLevel(level)}
	if file := global.String("log-file", ""); file != "" {
		opts = append(opts, didmeta.WithLogFile(file))
	}
	if generic := global.String("generic", ""); generic != "" {
		opts = append(opts, didmeta.WithGenericStore(generic))
	}
	if global.Bool("key-policy") {
		opts = append(opts, didmeta.WithKeyPolicy())
	}
	if brokers := global.Strings("kafka"); len(brokers) > 0 {
		opts = append(opts, didmeta.WithKafka(notify.KafkaConfig{
			Brokers: brokers,
			Topic:   global.String("topic", ""),
		}))
	}
	return opts, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: didmeta [global flags] <command> [flags] [args]")
	fmt.Fprintln(os.Stderr, "\nglobal flags:")
	for _, name := range []string{"database", "generic", "log-level", "log-file", "key-policy", "kafka", "topic"} {
		f := globalFlags.Flags[name]
		fmt.Fprintf(os.Stderr, "  --%-12s %s\n", f.Name, f.Description)
	}
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, c := range builtin.All() {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.Name(), c.Description())
		fmt.Fprintf(os.Stderr, "  %-10s   %s\n", "", c.Usage())
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
)

var version = "dev"

// errIssuesFound makes the process exit 2 when --fail-on-issues is set
var errIssuesFound = errors.New("issues found")

type globalOptions struct {
	Config    string `short:"c" long:"config" env:"CROSSCHECK_CONFIG" description:"YAML configuration file"`
	LogLevel  string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`
	LogFormat string `long:"log-format" choice:"json" choice:"text" description:"log line encoding"`
}

type application struct {
	ctx    context.Context
	global globalOptions
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	app := &application{ctx: ctx}
	parser := newParser(app)

	_, err := parser.ParseArgs(args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errIssuesFound):
		return 2
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, flagsErr.Message)
		return 0
	}
	fmt.Fprintf(os.Stderr, "crosscheck: %v\n", err)
	return 1
}

func newParser(app *application) *flags.Parser {
	parser := flags.NewParser(&app.global, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "crosscheck"
	parser.LongDescription = "Cross-validates the GraphQL API of an indexer against a reference deployment."

	commands := []struct {
		name, short, long string
		data              any
	}{
		{"squid-to-subgraph", "Compare a squid API against a subgraph",
			"The subgraph is the reference; the squid is the sample.",
			&squidToSubgraphCommand{app: app}},
		{"squid-to-squid", "Compare two squid APIs",
			"The first URL is the reference.",
			&sameDialectCommand{app: app, dialect: "squid"}},
		{"subgraph-to-subgraph", "Compare two subgraph APIs",
			"The first URL is the reference.",
			&sameDialectCommand{app: app, dialect: "subgraph"}},
		{"compare", "Compare two APIs of any dialect",
			"Endpoints missing from the command line are taken from the configuration file.",
			&compareCommand{app: app}},
		{"serve-fixture", "Serve a YAML dataset as a GraphQL API",
			"Generates a squid or subgraph schema for the dataset and answers queries over HTTP.",
			&serveFixtureCommand{app: app}},
		{"check", "Probe the endpoints and stores a run needs",
			"Sends a minimal introspection query to each endpoint and pings the history store.",
			&checkCommand{app: app}},
		{"history", "List recorded runs",
			"Without a run id, lists the most recent runs first.",
			&historyCommand{app: app}},
		{"version", "Print the version", "", &versionCommand{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("register command %s: %v", c.name, err))
		}
	}
	return parser
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dd0wney/cluso-crosscheck/pkg/config"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/graphql"
	"github.com/dd0wney/cluso-crosscheck/pkg/health"
	"github.com/dd0wney/cluso-crosscheck/pkg/history"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

// compareOptions are the flags shared by every comparison command. Unset
// flags leave the configuration file value in place.
type compareOptions struct {
	Repeats                 int    `short:"r" long:"repeats" description:"number of records to compare per entity (default 10)"`
	TemporalIgnoreIDs       bool   `long:"temporal-ignore-ids" description:"ignore id values in the ordered check"`
	NonTemporalLowerCaseIDs bool   `long:"non-temporal-lower-case-ids" description:"lower-case ids before the inclusion check"`
	OrderedRecords          bool   `long:"ordered-records" description:"compare temporal entities record by record in block order"`
	OnTransportError        string `long:"on-transport-error" choice:"abort" choice:"flag" description:"abort the run or flag the entity when a query fails"`
	Format                  string `long:"format" choice:"text" choice:"json" description:"report format"`
	Color                   bool   `long:"color" description:"colour the text report"`
	FailOnIssues            bool   `long:"fail-on-issues" description:"exit 2 when issues are found"`
	Record                  string `long:"record" description:"record endpoint traffic to a file or s3:// location"`
	Replay                  string `long:"replay" description:"answer queries from a recorded snapshot"`
	MetricsFile             string `long:"metrics-file" description:"write Prometheus metrics to a textfile"`
	History                 string `long:"history" description:"store the run summary in a directory or postgres:// database"`
}

func (o *compareOptions) apply(cfg *config.Config) {
	if o.Repeats != 0 {
		cfg.Comparison.NumRecords = o.Repeats
	}
	if o.TemporalIgnoreIDs {
		cfg.Comparison.TemporalIgnoreIDs = true
	}
	if o.NonTemporalLowerCaseIDs {
		cfg.Comparison.NonTemporalLowerCaseIDs = true
	}
	if o.OrderedRecords {
		cfg.Comparison.OrderedRecords = true
	}
	if o.OnTransportError != "" {
		cfg.Comparison.OnTransportError = o.OnTransportError
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.Color {
		cfg.Output.Color = true
	}
	if o.FailOnIssues {
		cfg.Output.FailOnIssues = true
	}
	if o.Record != "" {
		cfg.Snapshot.Record = o.Record
	}
	if o.Replay != "" {
		cfg.Snapshot.Replay = o.Replay
	}
	if o.MetricsFile != "" {
		cfg.Output.MetricsFile = o.MetricsFile
	}
	if o.History != "" {
		cfg.History.DatabaseURL = o.History
	}
}

type squidToSubgraphCommand struct {
	compareOptions
	Args struct {
		SubgraphURL string `positional-arg-name:"subgraph_url"`
		SquidURL    string `positional-arg-name:"squid_url"`
	} `positional-args:"yes" required:"yes"`

	app *application
}

func (c *squidToSubgraphCommand) Execute([]string) error {
	return c.app.compare(&c.compareOptions,
		endpoint{url: c.Args.SubgraphURL, dialect: string(dialect.KindSubgraph)},
		endpoint{url: c.Args.SquidURL, dialect: string(dialect.KindSquid)})
}

type sameDialectCommand struct {
	compareOptions
	Args struct {
		ReferenceURL string `positional-arg-name:"reference_url"`
		SampleURL    string `positional-arg-name:"sample_url"`
	} `positional-args:"yes" required:"yes"`

	app     *application
	dialect string
}

func (c *sameDialectCommand) Execute([]string) error {
	return c.app.compare(&c.compareOptions,
		endpoint{url: c.Args.ReferenceURL, dialect: c.dialect},
		endpoint{url: c.Args.SampleURL, dialect: c.dialect})
}

type compareCommand struct {
	compareOptions
	ReferenceDialect string `long:"reference-dialect" description:"dialect of the reference API"`
	SampleDialect    string `long:"sample-dialect" description:"dialect of the sample API"`
	Args             struct {
		ReferenceURL string `positional-arg-name:"reference_url"`
		SampleURL    string `positional-arg-name:"sample_url"`
	} `positional-args:"yes"`

	app *application
}

func (c *compareCommand) Execute([]string) error {
	return c.app.compare(&c.compareOptions,
		endpoint{url: c.Args.ReferenceURL, dialect: c.ReferenceDialect},
		endpoint{url: c.Args.SampleURL, dialect: c.SampleDialect})
}

type serveFixtureCommand struct {
	Dialect string `long:"dialect" required:"yes" description:"dialect of the generated schema"`
	Dataset string `long:"dataset" required:"yes" description:"YAML dataset file"`
	Addr    string `long:"addr" default:":4350" description:"listen address"`

	app *application
}

func (c *serveFixtureCommand) Execute([]string) error {
	cfg, err := config.Load(c.app.global.Config)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	logger := c.app.logger(cfg).With(logging.Component("fixture"))

	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return err
	}
	ds, err := graphql.LoadDataset(c.Dataset)
	if err != nil {
		return err
	}
	handler, err := graphql.NewFixtureHandler(ds, d, logger)
	if err != nil {
		return err
	}

	checker := health.NewChecker()
	checker.Register("fixture", health.Static(fmt.Sprintf("%s schema with %d entities", d, len(ds.Entities))))

	mux := http.NewServeMux()
	mux.Handle("/health", checker.HTTPHandler())
	mux.Handle("/", handler)
	srv := &http.Server{Addr: c.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving fixture",
		logging.String("addr", c.Addr),
		logging.Dialect(d.String()),
		logging.Count(len(ds.Entities)))

	select {
	case err := <-errc:
		return err
	case <-c.app.ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type checkCommand struct {
	History string `long:"history" description:"also ping this history store"`
	Args    struct {
		ReferenceURL string `positional-arg-name:"reference_url"`
		SampleURL    string `positional-arg-name:"sample_url"`
	} `positional-args:"yes"`

	app *application
}

// Execute probes the configured endpoints and prints the result as JSON.
// Any unhealthy check fails the command.
func (c *checkCommand) Execute([]string) error {
	cfg, err := config.Load(c.app.global.Config)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	endpoint{url: c.Args.ReferenceURL}.apply(&cfg.Reference)
	endpoint{url: c.Args.SampleURL}.apply(&cfg.Sample)
	if c.History != "" {
		cfg.History.DatabaseURL = c.History
	}
	logger := c.app.logger(cfg)

	checker := health.NewChecker()
	sess := &session{cfg: cfg, logger: logger}
	for _, ep := range []struct {
		role string
		cfg  config.EndpointConfig
	}{{"reference", cfg.Reference}, {"sample", cfg.Sample}} {
		if ep.cfg.URL == "" {
			continue
		}
		target, err := sess.target(ep.role, ep.cfg, nil)
		if err != nil {
			return err
		}
		checker.Register(ep.role, health.EndpointCheck(target.Querier, target.URL, target.Dialect))
	}
	if cfg.History.DatabaseURL != "" {
		store, err := history.Open(c.app.ctx, cfg.History.DatabaseURL)
		if err != nil {
			checker.Register("history", health.PingCheck(func(context.Context) error { return err }))
		} else {
			defer store.Close()
			checker.Register("history", health.PingCheck(store.Ping))
		}
	}
	if len(checker.Names()) == 0 {
		return errors.New("nothing to check: give endpoint URLs or a configuration file")
	}

	response := checker.Check(c.app.ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(response); err != nil {
		return err
	}
	if response.Status == health.StatusUnhealthy {
		return fmt.Errorf("preflight check is %s", response.Status)
	}
	return nil
}

type historyCommand struct {
	History string `long:"history" description:"directory or postgres:// database holding run summaries"`
	Limit   int    `short:"n" long:"limit" default:"10" description:"number of recent runs to list"`
	JSON    bool   `long:"json" description:"print runs as JSON"`
	Args    struct {
		RunID string `positional-arg-name:"run_id"`
	} `positional-args:"yes"`

	app *application
}

// Execute lists the most recent runs, or shows one run when an id is given
func (c *historyCommand) Execute([]string) error {
	cfg, err := config.Load(c.app.global.Config)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if c.History != "" {
		cfg.History.DatabaseURL = c.History
	}
	if cfg.History.DatabaseURL == "" {
		return errors.New("no history store: give --history or set history.database_url")
	}

	store, err := history.Open(c.app.ctx, cfg.History.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	var runs []*history.Run
	if c.Args.RunID != "" {
		run, err := store.GetRun(c.app.ctx, c.Args.RunID)
		if err != nil {
			return err
		}
		runs = []*history.Run{run}
	} else if runs, err = store.ListRuns(c.app.ctx, c.Limit); err != nil {
		return err
	}
	return printRuns(os.Stdout, runs, c.JSON)
}

func printRuns(w io.Writer, runs []*history.Run, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tREFERENCE\tSAMPLE\tENTITIES\tISSUES")
	for _, r := range runs {
		issues := 0
		for _, n := range r.Issues {
			issues += n
		}
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s (%s)\t%d/%d\t%d\n",
			r.ID, r.StartedAt.Format(time.RFC3339),
			r.ReferenceURL, r.ReferenceDialect, r.SampleURL, r.SampleDialect,
			r.SafeEntities, r.Entities, issues)
	}
	return tw.Flush()
}

type versionCommand struct{}

func (versionCommand) Execute([]string) error {
	fmt.Printf("crosscheck %s\n", version)
	return nil
}

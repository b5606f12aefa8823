package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/config"
	"github.com/dd0wney/cluso-crosscheck/pkg/crosscheck"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/history"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
	"github.com/dd0wney/cluso-crosscheck/pkg/metrics"
	"github.com/dd0wney/cluso-crosscheck/pkg/report"
	"github.com/dd0wney/cluso-crosscheck/pkg/snapshot"
)

// endpoint is a command-line override of one configured endpoint
type endpoint struct {
	url     string
	dialect string
}

func (e endpoint) apply(cfg *config.EndpointConfig) {
	if e.url != "" {
		cfg.URL = e.url
	}
	if e.dialect != "" {
		cfg.Dialect = e.dialect
	}
}

func (a *application) logger(cfg *config.Config) logging.Logger {
	if a.global.LogLevel != "" {
		cfg.Log.Level = a.global.LogLevel
	}
	if a.global.LogFormat != "" {
		cfg.Log.Format = a.global.LogFormat
	}
	return logging.NewStderrLogger(logging.ParseFormat(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level))
}

// loadConfig merges the configuration file, the environment and the flags
func (a *application) loadConfig(opts *compareOptions, ref, smp endpoint) (*config.Config, error) {
	cfg, err := config.Load(a.global.Config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	ref.apply(&cfg.Reference)
	smp.apply(&cfg.Sample)
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *application) compare(opts *compareOptions, ref, smp endpoint) error {
	cfg, err := a.loadConfig(opts, ref, smp)
	if err != nil {
		return err
	}
	logger := a.logger(cfg)
	registry := metrics.NewRegistry()

	sess, err := newSession(a.ctx, cfg, logger)
	if err != nil {
		return err
	}

	refTarget, err := sess.target("reference", cfg.Reference, registry)
	if err != nil {
		return err
	}
	smpTarget, err := sess.target("sample", cfg.Sample, registry)
	if err != nil {
		return err
	}

	runner := crosscheck.NewRunner(crosscheck.Options{
		NumRecords:              cfg.Comparison.NumRecords,
		TemporalFields:          cfg.Comparison.TemporalFields,
		TemporalIgnoreIDs:       cfg.Comparison.TemporalIgnoreIDs,
		NonTemporalLowerCaseIDs: cfg.Comparison.NonTemporalLowerCaseIDs,
		OrderedRecords:          cfg.Comparison.OrderedRecords,
		OnError:                 cfg.ErrorPolicy(),
	}, logger)

	rep, runErr := runner.Run(a.ctx, refTarget, smpTarget)
	if runErr == nil {
		reporter, err := report.New(cfg.Output.Format, cfg.Output.Color)
		if err != nil {
			return err
		}
		if err := reporter.Report(os.Stdout, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		registry.RecordReport(rep)
	}

	// the snapshot and metrics are kept for failed runs too
	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := sess.save(a.ctx); err != nil {
		errs = append(errs, err)
	}
	if cfg.Output.MetricsFile != "" {
		if err := registry.WriteToTextfile(cfg.Output.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if runErr == nil && cfg.History.DatabaseURL != "" {
		if err := saveHistory(a.ctx, cfg.History.DatabaseURL, rep); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if cfg.Output.FailOnIssues && rep.HasIssues() {
		return errIssuesFound
	}
	return nil
}

func saveHistory(ctx context.Context, url string, rep *crosscheck.Report) error {
	store, err := history.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	if err := store.SaveRun(ctx, history.FromReport(rep)); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// session owns the snapshot a run records into or replays from
type session struct {
	cfg    *config.Config
	logger logging.Logger

	snap   *snapshot.Snapshot
	store  snapshot.Store
	replay bool
}

func newSession(ctx context.Context, cfg *config.Config, logger logging.Logger) (*session, error) {
	s := &session{cfg: cfg, logger: logger}
	switch {
	case cfg.Snapshot.Replay != "":
		store, err := snapshot.Open(ctx, cfg.Snapshot.Replay, cfg.Snapshot.S3)
		if err != nil {
			return nil, err
		}
		snap, err := snapshot.Load(ctx, store, cfg.Snapshot.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", store, err)
		}
		logger.Info("replaying snapshot", logging.String("location", store.String()), logging.Count(snap.Len()))
		s.snap, s.store, s.replay = snap, store, true
	case cfg.Snapshot.Record != "":
		store, err := snapshot.Open(ctx, cfg.Snapshot.Record, cfg.Snapshot.S3)
		if err != nil {
			return nil, err
		}
		s.snap, s.store = snapshot.New(), store
	}
	return s, nil
}

func (s *session) target(role string, ep config.EndpointConfig, observer client.Observer) (crosscheck.Target, error) {
	var d *dialect.Dialect
	if ep.Dialect != "" {
		parsed, err := dialect.Parse(ep.Dialect)
		if err != nil {
			return crosscheck.Target{}, fmt.Errorf("%s: %w", role, err)
		}
		d = parsed
	}

	var q client.Querier
	if s.replay {
		q = snapshot.NewReplayer(s.snap)
	} else {
		opts := client.Options{
			Timeout:   s.cfg.Transport.Timeout,
			Headers:   ep.Headers,
			RateLimit: s.cfg.Transport.RateLimit,
			Burst:     s.cfg.Transport.Burst,
			Logger:    s.logger.With(logging.Role(role)),
		}
		switch {
		case ep.JWT.Secret != "":
			signer, err := client.NewJWTSigner(ep.JWT.Secret, ep.JWT.Subject, ep.JWT.TTL)
			if err != nil {
				return crosscheck.Target{}, fmt.Errorf("%s: %w", role, err)
			}
			opts.Token = signer
		case ep.Token != "":
			opts.Token = client.StaticToken(ep.Token)
		}
		q = client.NewHTTPClient(opts)
		if s.snap != nil {
			q = snapshot.NewRecorder(q, s.snap)
		}
	}

	return crosscheck.Target{
		URL:     ep.URL,
		Dialect: d,
		Querier: client.Instrument(q, role, observer),
	}, nil
}

func (s *session) save(ctx context.Context) error {
	if s.snap == nil || s.replay {
		return nil
	}
	// cancellation must not lose what was recorded
	if err := s.snap.Save(context.WithoutCancel(ctx), s.store, s.cfg.Snapshot.Passphrase); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.store, err)
	}
	s.logger.Info("recorded snapshot", logging.String("location", s.store.String()), logging.Count(s.snap.Len()))
	return nil
}

// Package crosscheck runs the standard comparison of a reference API
// against a sample API.
package crosscheck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/compare"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/entities"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

// Target is an endpoint to compare
type Target struct {
	URL     string
	Dialect *dialect.Dialect
	Querier client.Querier
}

// Options configures a run
type Options struct {
	NumRecords              int
	TemporalFields          []string
	TemporalIgnoreIDs       bool
	NonTemporalLowerCaseIDs bool
	OrderedRecords          bool
	OnError                 compare.ErrorPolicy
}

// DefaultOptions matches the CLI defaults
func DefaultOptions() Options {
	return Options{NumRecords: 10, OnError: compare.AbortOnError}
}

// Runner sequences schema discovery, reconciliation and the data checks
type Runner struct {
	opts      Options
	logger    logging.Logger
	ordered   *compare.OrderedComparator
	inclusion *compare.InclusionComparator
	now       func() time.Time
	newID     func() string
}

// NewRunner creates a runner
func NewRunner(opts Options, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.NumRecords <= 0 {
		opts.NumRecords = 10
	}
	if opts.OnError == "" {
		opts.OnError = compare.AbortOnError
	}
	return &Runner{
		opts:      opts,
		logger:    logger,
		ordered:   compare.NewOrderedComparator(logger),
		inclusion: compare.NewInclusionComparator(logger),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Run compares sample against reference. Discovery and comparison issues
// are carried in the report; the error is set only when the run could not finish.
func (r *Runner) Run(ctx context.Context, reference, sample Target) (*Report, error) {
	started := r.now()
	report := &Report{RunID: r.newID(), StartedAt: started}
	log := r.logger.With(logging.RunID(report.RunID))

	refSide, refSummary, err := r.discover(ctx, log.With(logging.Role("reference")), reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	smpSide, smpSummary, err := r.discover(ctx, log.With(logging.Role("sample")), sample)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	report.Reference, report.Sample = refSummary, smpSummary

	report.StrayQueries = compare.CompareStrayQueries(refSide, smpSide)

	log.Info("comparing entities",
		logging.Int("reference_entities", refSide.Entities.Len()),
		logging.Int("sample_entities", smpSide.Entities.Len()))
	report.Schema = compare.CompareEntities(refSide, smpSide)

	safe := refSide.Entities.Filter(report.Schema.IsSafe)
	report.TemporalEntities, report.NonTemporalEntities = compare.SeparateByTemporalFields(safe, r.opts.TemporalFields)
	log.Info("classified safe entities",
		logging.Int("temporal", len(report.TemporalEntities)),
		logging.Int("non_temporal", len(report.NonTemporalEntities)))

	refEP := compare.Endpoint{Side: refSide, URL: reference.URL, Querier: reference.Querier}
	smpEP := compare.Endpoint{Side: smpSide, URL: sample.URL, Querier: sample.Querier}
	report.OrderedRecords = r.opts.OrderedRecords

	inclusionNames := report.NonTemporalEntities
	if r.opts.OrderedRecords {
		report.Temporal, err = r.ordered.Compare(ctx, report.TemporalEntities, refEP, smpEP, compare.OrderedOptions{
			NumRecords:     r.opts.NumRecords,
			IgnoreIDs:      r.opts.TemporalIgnoreIDs,
			TemporalFields: r.opts.TemporalFields,
			OnError:        r.opts.OnError,
		})
		if err != nil {
			return nil, fmt.Errorf("ordered records check: %w", err)
		}
	} else {
		log.Info("testing all entities as non-temporal")
		inclusionNames = append(append([]string{}, report.TemporalEntities...), report.NonTemporalEntities...)
	}

	report.NonTemporal, err = r.inclusion.Compare(ctx, inclusionNames, refEP, smpEP, compare.InclusionOptions{
		NumRecords:   r.opts.NumRecords,
		LowerCaseIDs: r.opts.NonTemporalLowerCaseIDs,
		OnError:      r.opts.OnError,
	})
	if err != nil {
		return nil, fmt.Errorf("cross-inclusion check: %w", err)
	}

	report.Duration = r.now().Sub(started)
	log.Info("comparison finished",
		logging.Bool("issues", report.HasIssues()),
		logging.Duration("duration", report.Duration))
	return report, nil
}

func (r *Runner) discover(ctx context.Context, log logging.Logger, t Target) (compare.Side, EndpointSummary, error) {
	timer := logging.StartTimer(log, "schema discovery", logging.Endpoint(t.URL), logging.Dialect(t.Dialect.String()))
	schema, err := client.GetEndpointSchema(ctx, t.Querier, t.URL)
	if err != nil {
		timer.EndError(err)
		return compare.Side{}, EndpointSummary{}, err
	}
	inferred, err := entities.Infer(schema, t.Dialect, log)
	if err != nil {
		timer.EndError(err)
		return compare.Side{}, EndpointSummary{}, err
	}
	timer.End()

	side := compare.Side{
		Dialect:      t.Dialect,
		Entities:     inferred.Entities,
		StrayQueries: inferred.NonEntityQueries,
	}
	summary := EndpointSummary{
		URL:          t.URL,
		Dialect:      t.Dialect.String(),
		Entities:     inferred.Entities.Names(),
		StrayQueries: append([]string{}, inferred.NonEntityQueries...),
		Incomplete:   inferred.Incomplete,
	}
	return side, summary, nil
}

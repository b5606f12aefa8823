package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

// Directions of the inclusion check
const (
	DirectionForward  = "reference -> sample"
	DirectionBackward = "sample -> reference"
)

// InclusionOptions configures the cross-inclusion check
type InclusionOptions struct {
	NumRecords int
	// LowerCaseIDs folds ids before they are sent to the other endpoint and
	// before records are matched
	LowerCaseIDs bool
	OnError      ErrorPolicy
}

// InclusionComparator samples records from one endpoint, looks them up by
// id on the other and compares them field by field, in both directions.
type InclusionComparator struct {
	logger logging.Logger
}

// NewInclusionComparator creates a cross-inclusion comparator
func NewInclusionComparator(logger logging.Logger) *InclusionComparator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &InclusionComparator{logger: logger.With(logging.Phase(PhaseNonTemporal))}
}

type role struct {
	label  string
	entity string
	ep     Endpoint
}

// Compare checks every entity in names. It returns an error only for a
// fatal failure under the configured error policy.
func (c *InclusionComparator) Compare(ctx context.Context, names []string, reference, sample Endpoint, opts InclusionOptions) (*Result, error) {
	res := newResult(PhaseNonTemporal)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := c.logger.With(logging.Entity(name))

		refFields, ok := reference.Entities.Fields(name)
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Entity: name, Reason: "not a reference entity"})
			continue
		}
		sampleName, err := resolveSample(sample.Side, name)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Entity: name, Reason: err.Error()})
			continue
		}
		fields := queryFields(refFields)
		ref := role{label: "reference", entity: name, ep: reference}
		smp := role{label: "sample", entity: sampleName, ep: sample}

		log.Info("checking cross-inclusion")
		forward, err := c.direction(ctx, log, ref, smp, fields, opts)
		if err != nil {
			return nil, err
		}
		backward, err := c.direction(ctx, log, smp, ref, fields, opts)
		if err != nil {
			return nil, err
		}
		if len(forward) == 0 && len(backward) == 0 {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Issues with entity %s:", name)
		if len(forward) > 0 {
			fmt.Fprintf(&b, "\n  %s:\n%s", DirectionForward, indent(forward, "    "))
		}
		if len(backward) > 0 {
			fmt.Fprintf(&b, "\n  %s:\n%s", DirectionBackward, indent(backward, "    "))
		}
		issues := make([]string, 0, len(forward)+len(backward))
		issues = append(issues, forward...)
		issues = append(issues, backward...)
		res.Findings = append(res.Findings, Finding{
			Entity:   name,
			Issues:   issues,
			Forward:  forward,
			Backward: backward,
			Text:     b.String(),
		})
	}
	return res, nil
}

func (c *InclusionComparator) direction(ctx context.Context, log logging.Logger, src, dst role, fields []string, opts InclusionOptions) ([]string, error) {
	log = log.With(logging.Direction(src.label + " -> " + dst.label))
	fold := func(id string) string { return id }
	if opts.LowerCaseIDs {
		fold = strings.ToLower
	}

	query := src.ep.Dialect.SampleQuery(src.entity, fields, opts.NumRecords)
	sampled, err := client.FetchRecords(ctx, src.ep.Querier, src.ep.URL, query, src.ep.Dialect.ListQuery(src.entity))
	if err != nil {
		return c.failed(ctx, log, src.entity, err, opts.OnError)
	}
	if len(sampled) == 0 {
		return []string{fmt.Sprintf("%s did not return any records (requested %d)", src.label, opts.NumRecords)}, nil
	}

	ids := make([]string, 0, len(sampled))
	for _, rec := range sampled {
		ids = append(ids, fold(formatValue(rec["id"])))
	}

	query = dst.ep.Dialect.InclusionQuery(dst.entity, fields, ids)
	found, err := client.FetchRecords(ctx, dst.ep.Querier, dst.ep.URL, query, dst.ep.Dialect.ListQuery(dst.entity))
	if err != nil {
		return c.failed(ctx, log, src.entity, err, opts.OnError)
	}

	var issues []string
	if len(found) != len(sampled) {
		issues = append(issues, fmt.Sprintf(
			"number of same id records found in %s (%d) is different from the size of the sample retrieved from %s (%d)",
			dst.label, len(found), src.label, len(sampled)))
	}

	byID := make(map[string]client.Record, len(found))
	for _, rec := range found {
		if rec != nil {
			byID[fold(formatValue(rec["id"]))] = rec
		}
	}

	for _, rec := range sampled {
		rawID := formatValue(rec["id"])
		other, ok := byID[fold(rawID)]
		if !ok {
			issues = append(issues, fmt.Sprintf("record \"%s\" was not found by the %s", fold(rawID), dst.label))
			continue
		}
		for _, f := range fields {
			if looseEqual(rec[f], other[f]) {
				continue
			}
			if f == "id" && fold(formatValue(rec[f])) == fold(formatValue(other[f])) {
				continue
			}
			issues = append(issues, fmt.Sprintf("field %s differs in record \"%s\": \"%s\" in %s vs \"%s\" in %s",
				f, rawID, formatValue(rec[f]), src.label, formatValue(other[f]), dst.label))
		}
	}
	return issues, nil
}

func (c *InclusionComparator) failed(ctx context.Context, log logging.Logger, entity string, err error, policy ErrorPolicy) ([]string, error) {
	issue, fatal := policy.handleFetch(ctx, entity, err)
	if fatal != nil {
		log.Error("inclusion check aborted", logging.Error(err))
		return nil, fatal
	}
	log.Warn("query failed, flagging entity", logging.Error(err))
	return []string{issue}, nil
}

package compare

import (
	"context"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

// OrderedOptions configures the ordered-record check
type OrderedOptions struct {
	NumRecords int
	// IgnoreIDs skips id comparison unless id is the only requested field
	IgnoreIDs      bool
	TemporalFields []string
	OnError        ErrorPolicy
}

// OrderedComparator fetches the first records of each entity from both
// endpoints, sorted by a temporal field, and compares them by position.
type OrderedComparator struct {
	logger logging.Logger
}

// NewOrderedComparator creates an ordered-record comparator
func NewOrderedComparator(logger logging.Logger) *OrderedComparator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OrderedComparator{logger: logger.With(logging.Phase(PhaseTemporal))}
}

// Compare checks every entity in names. It returns an error only for a
// fatal failure under the configured error policy.
func (c *OrderedComparator) Compare(ctx context.Context, names []string, reference, sample Endpoint, opts OrderedOptions) (*Result, error) {
	res := newResult(PhaseTemporal)
	temporal := temporalSet(opts.TemporalFields)

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
		ignoreIDs := opts.IgnoreIDs && len(fields) > 1
		if opts.IgnoreIDs && !ignoreIDs {
			log.Warn("id is the only field of the entity, cannot ignore it")
		}

		key := sortKey(fields, temporal)
		if key == "" {
			log.Warn("entity has no scalar temporal field, skipping ordered comparison")
			res.Skipped = append(res.Skipped, Skip{Entity: name, Reason: "no scalar temporal field"})
			continue
		}

		refQuery := reference.Dialect.OrderedQuery(name, fields, key, opts.NumRecords)
		smpQuery := sample.Dialect.OrderedQuery(sampleName, fields, key, opts.NumRecords)
		log.Info("comparing ordered records", logging.String("sort_key", key))

		var issues []string
		refRecords, err := client.FetchRecords(ctx, reference.Querier, reference.URL, refQuery, reference.Dialect.ListQuery(name))
		if err == nil {
			refRecords = tieBreakByID(refRecords, key)
		}
		var smpRecords []client.Record
		if err == nil {
			smpRecords, err = client.FetchRecords(ctx, sample.Querier, sample.URL, smpQuery, sample.Dialect.ListQuery(sampleName))
			if err == nil {
				smpRecords = tieBreakByID(smpRecords, key)
			}
		}

		if err != nil {
			issue, fatal := opts.OnError.handleFetch(ctx, name, err)
			if fatal != nil {
				log.Error("ordered comparison aborted", logging.Error(err))
				return nil, fatal
			}
			issues = append(issues, issue)
		} else {
			issues = compareOrdered(refRecords, smpRecords, fields, ignoreIDs)
		}

		if len(issues) > 0 {
			res.Findings = append(res.Findings, Finding{
				Entity:         name,
				Issues:         issues,
				ReferenceQuery: refQuery,
				SampleQuery:    smpQuery,
				Text: fmt.Sprintf("Issues with entity %s on queries:\nreference query : %s\nsample query    : %s\n%s",
					name, refQuery, smpQuery, indent(issues, "  ")),
			})
		}
	}
	return res, nil
}

func sortKey(fields []string, temporal map[string]bool) string {
	for _, f := range fields {
		if temporal[f] {
			return f
		}
	}
	return ""
}

func compareOrdered(ref, smp []client.Record, fields []string, ignoreIDs bool) []string {
	if len(ref) != len(smp) {
		return []string{fmt.Sprintf("response lengths are inconsistent: %d items from reference, %d items from sample",
			len(ref), len(smp))}
	}
	var issues []string
	for i, rec := range ref {
		other := smp[i]
		if other == nil {
			issues = append(issues, fmt.Sprintf("for record %d the corresponding sample record was not found", i))
			continue
		}
		for _, f := range fields {
			if f == "id" && ignoreIDs {
				continue
			}
			if !looseEqual(rec[f], other[f]) {
				issues = append(issues, fmt.Sprintf("for record %d field %s differs: \"%s\" in reference vs \"%s\" in sample",
					i, f, formatValue(rec[f]), formatValue(other[f])))
			}
		}
	}
	return issues
}

// tieBreakByID sorts each run of records sharing a sort key value by id in
// byte order. Both sides go through it, so a server-side id collation never
// decides positions.
func tieBreakByID(records []client.Record, key string) []client.Record {
	if len(records) < 2 {
		return records
	}
	out := make([]client.Record, len(records))
	copy(out, records)
	start := 0
	for i := 1; i <= len(out); i++ {
		if i < len(out) && out[i] != nil && out[start] != nil && looseEqual(out[i][key], out[start][key]) {
			continue
		}
		run := out[start:i]
		sort.SliceStable(run, func(a, b int) bool {
			return formatValue(run[a]["id"]) < formatValue(run[b]["id"])
		})
		start = i
	}
	return out
}

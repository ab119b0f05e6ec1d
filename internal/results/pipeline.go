package results

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
)

const instrumentationName = "github.com/fyrsmithlabs/showcase/internal/results"

// Options configures a Pipeline.
type Options struct {
	// Dimensions is the enumeration walked by ApplyTagFilters, in order.
	Dimensions project.Dimensions

	// PriorityTags are the bucket keys ahead of UNTAGGED, in order.
	PriorityTags []string

	// Bucketing selects how tagged projects are assigned to buckets.
	Bucketing BucketMode
}

// DefaultOptions returns the stock dimensions, priority tags and first-match bucketing.
func DefaultOptions() Options {
	return Options{
		Dimensions:   project.DefaultDimensions(),
		PriorityTags: slices.Clone(DefaultPriorityTags),
		Bucketing:    BucketFirstMatch,
	}
}

// Pipeline runs the filter, search, bucket and sort stages.
type Pipeline struct {
	opts    Options
	logger  *logging.Logger
	metrics *Metrics
}

// NewPipeline creates a pipeline. logger and metrics may be nil.
func NewPipeline(opts Options, logger *logging.Logger, metrics *Metrics) *Pipeline {
	if opts.Dimensions == nil {
		opts.Dimensions = project.DefaultDimensions()
	}
	if opts.Bucketing == "" {
		opts.Bucketing = BucketFirstMatch
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{opts: opts, logger: logger, metrics: metrics}
}

// Options returns the pipeline configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run derives the ordered result list. It never fails: missing optional data
// means "no match" or "untagged".
func (p *Pipeline) Run(ctx context.Context, projects []project.Project, selected project.FilterSet, titleSubstring string) []project.Project {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "pipeline.run")
	defer span.End()

	start := time.Now()

	filtered := ApplyTagFilters(projects, selected, p.opts.Dimensions)
	searched := ApplyTitleSearch(filtered, titleSubstring)
	buckets := SplitIntoBuckets(searched, p.opts.PriorityTags, p.opts.Bucketing)
	results := ApplySort(buckets)

	duration := time.Since(start)

	span.SetAttributes(
		attribute.Int("pipeline.filters", selected.Len()),
		attribute.Bool("pipeline.title_search", titleSubstring != ""),
		attribute.Int("pipeline.results", len(results)),
	)

	p.logger.Trace(ctx, "pipeline stages",
		zap.Int("input", len(projects)),
		zap.Int("after_filters", len(filtered)),
		zap.Int("after_search", len(searched)),
		zap.Any("buckets", buckets.Sizes()),
	)
	p.logger.Debug(ctx, "pipeline run",
		zap.Int("filters", selected.Len()),
		zap.String("title", titleSubstring),
		zap.Int("results", len(results)),
		zap.Duration("duration", duration),
	)

	if p.metrics != nil {
		p.metrics.RecordRun(duration, len(results), buckets.Sizes())
	}

	return results
}

// ApplyTagFilters keeps the projects that match the selection. An empty
// selection returns projects unchanged.
//
// Dimensions are visited in the order of dims, skipping those without a
// selected value. A project must contain at least one selected value of every
// visited dimension; the first failing dimension rejects it. Selected filters
// whose dimension is not in dims are ignored, so a selection made only of such
// filters lets every project through.
func ApplyTagFilters(projects []project.Project, selected project.FilterSet, dims project.Dimensions) []project.Project {
	if selected.Len() == 0 {
		return projects
	}

	grouped := selected.GroupByDimension()

	out := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if matchesAll(p, grouped, dims) {
			out = append(out, p)
		}
	}
	return out
}

func matchesAll(p project.Project, grouped map[project.Dimension][]string, dims project.Dimensions) bool {
	for _, d := range dims {
		wanted, ok := grouped[d]
		if !ok {
			continue
		}
		if !slices.ContainsFunc(wanted, func(v string) bool { return p.HasValue(d, v) }) {
			return false
		}
	}
	return true
}

// ApplyTitleSearch keeps projects whose name contains substring, ignoring
// case. Both sides are lowercased only, so "ß" does not match "ss" and
// ligatures are not expanded. An empty substring returns projects unchanged.
func ApplyTitleSearch(projects []project.Project, substring string) []project.Project {
	if substring == "" {
		return projects
	}

	lower := cases.Lower(language.Und)
	needle := lower.String(substring)

	out := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(lower.String(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// SplitIntoBuckets groups projects by priority tag. Projects without tags
// always land in UNTAGGED; see BucketMode for tagged projects.
func SplitIntoBuckets(projects []project.Project, priorityTags []string, mode BucketMode) Buckets {
	buckets := newBuckets(priorityTags)

	for _, p := range projects {
		if !p.HasTags() {
			buckets.add(UntaggedKey, p)
			continue
		}

		if mode == BucketFanout {
			for _, tag := range p.Tags {
				if buckets.has(tag) {
					buckets.add(tag, p)
				} else {
					buckets.add(UntaggedKey, p)
				}
			}
			continue
		}

		buckets.add(firstPriorityTag(p.Tags, buckets.keys), p)
	}

	return buckets
}

// firstPriorityTag returns the earliest key in order that tags contains,
// or UntaggedKey.
func firstPriorityTag(tags, order []string) string {
	for _, key := range order {
		if key != UntaggedKey && slices.Contains(tags, key) {
			return key
		}
	}
	return UntaggedKey
}

// ApplySort sorts every bucket by name and concatenates them in bucket order.
// Names compare case-insensitively; names equal after folding fall back to a
// byte-wise comparison so the order is total. The buckets are left untouched.
func ApplySort(buckets Buckets) []project.Project {
	fold := cases.Fold()

	total := 0
	for _, key := range buckets.keys {
		total += len(buckets.groups[key])
	}

	out := make([]project.Project, 0, total)
	for _, key := range buckets.keys {
		out = append(out, sortByName(buckets.groups[key], fold)...)
	}
	return out
}

type sortKey struct {
	folded string
	p      project.Project
}

func sortByName(projects []project.Project, fold cases.Caser) []project.Project {
	keyed := make([]sortKey, len(projects))
	for i, p := range projects {
		keyed[i] = sortKey{folded: fold.String(p.Name), p: p}
	}

	slices.SortStableFunc(keyed, func(a, b sortKey) int {
		if c := strings.Compare(a.folded, b.folded); c != 0 {
			return c
		}
		return strings.Compare(a.p.Name, b.p.Name)
	})

	out := make([]project.Project, len(keyed))
	for i, k := range keyed {
		out[i] = k.p
	}
	return out
}

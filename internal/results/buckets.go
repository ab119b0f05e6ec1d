package results

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fyrsmithlabs/showcase/internal/project"
)

// UntaggedKey is the bucket for projects without a priority tag.
const UntaggedKey = "UNTAGGED"

// DefaultPriorityTags are pulled to the top of the results, lower index first.
var DefaultPriorityTags = []string{"Khronos Official", "Staff Picks"}

// BucketMode selects how tagged projects are assigned to buckets.
type BucketMode string

const (
	// BucketFirstMatch puts each project in exactly one bucket: the
	// highest-priority tag it carries, or UNTAGGED.
	BucketFirstMatch BucketMode = "first_match"

	// BucketFanout appends a project once per tag: to the tag's bucket when it
	// is a priority tag, otherwise to UNTAGGED. A project with both kinds of
	// tags therefore shows up more than once.
	BucketFanout BucketMode = "fanout"
)

// ParseBucketMode validates a mode name. Empty means BucketFirstMatch.
func ParseBucketMode(s string) (BucketMode, error) {
	switch m := BucketMode(strings.TrimSpace(s)); m {
	case "":
		return BucketFirstMatch, nil
	case BucketFirstMatch, BucketFanout:
		return m, nil
	default:
		return "", fmt.Errorf("unknown bucketing mode %q (want %q or %q)", s, BucketFirstMatch, BucketFanout)
	}
}

// Buckets maps bucket keys to projects and remembers the key order:
// priority tags as declared, then UNTAGGED.
type Buckets struct {
	keys   []string
	groups map[string][]project.Project
}

func newBuckets(priorityTags []string) Buckets {
	keys := make([]string, 0, len(priorityTags)+1)
	groups := make(map[string][]project.Project, len(priorityTags)+1)
	for _, tag := range priorityTags {
		if _, dup := groups[tag]; dup || tag == UntaggedKey {
			continue
		}
		keys = append(keys, tag)
		groups[tag] = []project.Project{}
	}
	keys = append(keys, UntaggedKey)
	groups[UntaggedKey] = []project.Project{}

	return Buckets{keys: keys, groups: groups}
}

// Keys returns bucket keys in output order.
func (b Buckets) Keys() []string {
	return slices.Clone(b.keys)
}

// Get returns the projects in a bucket.
func (b Buckets) Get(key string) []project.Project {
	return b.groups[key]
}

// Sizes returns the number of projects per bucket.
func (b Buckets) Sizes() map[string]int {
	sizes := make(map[string]int, len(b.keys))
	for _, k := range b.keys {
		sizes[k] = len(b.groups[k])
	}
	return sizes
}

func (b Buckets) has(key string) bool {
	_, ok := b.groups[key]
	return ok && key != UntaggedKey
}

func (b Buckets) add(key string, p project.Project) {
	b.groups[key] = append(b.groups[key], p)
}

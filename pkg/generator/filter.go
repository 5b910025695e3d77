package generator

import (
	"fmt"
	"regexp"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
)

// untaggedTag stands in for operations that declare no tags
const untaggedTag = "misc"

// TagFilter keeps operations by their tags. The zero value keeps everything.
type TagFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// CompileTagFilters compiles include and exclude regex patterns
func CompileTagFilters(include, exclude []string) (TagFilter, error) {
	var f TagFilter
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return TagFilter{}, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		f.include = append(f.include, r)
	}
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return TagFilter{}, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, r)
	}
	return f, nil
}

// allows reports whether an operation with these tags is generated. Any
// tag matching any include pattern admits it (all are admitted when there
// are no include patterns); any tag matching an exclude pattern drops it.
func (f TagFilter) allows(tags []string) bool {
	if len(tags) == 0 {
		tags = []string{untaggedTag}
	}
	if len(f.include) > 0 && !matchAny(f.include, tags) {
		return false
	}
	return !matchAny(f.exclude, tags)
}

func matchAny(patterns []*regexp.Regexp, tags []string) bool {
	for _, tag := range tags {
		for _, r := range patterns {
			if r.MatchString(tag) {
				return true
			}
		}
	}
	return false
}

func (f TagFilter) apply(ops []ir.IROperation) []ir.IROperation {
	if len(f.include) == 0 && len(f.exclude) == 0 {
		return ops
	}
	out := make([]ir.IROperation, 0, len(ops))
	for _, op := range ops {
		if f.allows(op.Tags) {
			out = append(out, op)
		}
	}
	return out
}

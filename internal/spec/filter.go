package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterOption narrows the set of operations a Document exposes.
type FilterOption func(*filterConfig) error

type filterConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) FilterOption {
	return func(c *filterConfig) error {
		c.includeTags = addTags(c.includeTags, tags)
		return nil
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) FilterOption {
	return func(c *filterConfig) error {
		c.excludeTags = addTags(c.excludeTags, tags)
		return nil
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) FilterOption {
	return func(c *filterConfig) error {
		if len(methods) == 0 {
			return nil
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
		return nil
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions.
func WithPathPatterns(patterns []string) FilterOption {
	return func(c *filterConfig) error {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return &SpecError{Code: InputError, Message: fmt.Sprintf("invalid path pattern %q: %v", p, err), Cause: err}
			}
			c.pathRes = append(c.pathRes, re)
		}
		return nil
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// Filter returns a copy of doc without the operations the options exclude.
// Path items left with no operations are dropped. Component schemas are
// kept as-is.
func Filter(doc *Document, opts ...FilterOption) (*Document, error) {
	cfg := &filterConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	out := *doc
	out.Paths = nil
	for _, item := range doc.Paths {
		if !cfg.allowPath(item.Path) {
			continue
		}
		kept := item
		kept.Operations = nil
		for _, op := range item.Operations {
			if cfg.allowMethod(op.Method) && cfg.allowTags(op.Tags) {
				kept.Operations = append(kept.Operations, op)
			}
		}
		if len(kept.Operations) > 0 {
			out.Paths = append(out.Paths, kept)
		}
	}
	return &out, nil
}

func (c *filterConfig) allowPath(path string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (c *filterConfig) allowMethod(m HttpMethod) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *filterConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

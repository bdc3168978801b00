package repository

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// WalkFunc is called for every visited node. Returning an error stops the
// walk and the error is returned from Walk.
type WalkFunc func(ctx context.Context, node Node) error

type walkOptions struct {
	include  []string
	exclude  []string
	maxDepth int
}

// WalkOption configures Walk.
type WalkOption func(*walkOptions)

// WithInclude restricts visited nodes to paths matching one of the glob
// patterns (doublestar syntax, e.g. "/content/**"). Traversal still
// descends through non-matching nodes.
func WithInclude(patterns ...string) WalkOption {
	return func(o *walkOptions) {
		o.include = append(o.include, patterns...)
	}
}

// WithExclude prunes every node matching one of the glob patterns together
// with its subtree.
func WithExclude(patterns ...string) WalkOption {
	return func(o *walkOptions) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithMaxDepth limits traversal depth below the start node. 0 visits only
// the start node; a negative depth is unlimited.
func WithMaxDepth(depth int) WalkOption {
	return func(o *walkOptions) {
		o.maxDepth = depth
	}
}

// Walk visits start and its descendants depth-first in path order.
func Walk(ctx context.Context, s Session, start Node, fn WalkFunc, opts ...WalkOption) error {
	o := walkOptions{maxDepth: -1}
	for _, opt := range opts {
		opt(&o)
	}
	for _, p := range append(append([]string(nil), o.include...), o.exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid path pattern: %q", p)
		}
	}
	return walk(ctx, s, start, fn, &o, 0)
}

func walk(ctx context.Context, s Session, node Node, fn WalkFunc, o *walkOptions, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if matchAny(o.exclude, node.Path) {
		return nil
	}
	if len(o.include) == 0 || matchAny(o.include, node.Path) {
		if err := fn(ctx, node); err != nil {
			return err
		}
	}
	if o.maxDepth >= 0 && depth >= o.maxDepth {
		return nil
	}

	children, err := s.Children(ctx, node)
	if err != nil {
		return fmt.Errorf("children of %s: %w", node.Path, err)
	}
	for _, child := range children {
		if err := walk(ctx, s, child, fn, o, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

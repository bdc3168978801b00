// Package repository models the hierarchical content repository that graph
// statements are read from: nodes addressed by path, each carrying named
// single- or multi-valued properties.
package repository

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// RootPath is the path of the repository root node.
const RootPath = "/"

// NodeID is the opaque, stable identifier of a node.
type NodeID string

// Node is a handle to a position in the repository hierarchy.
type Node struct {
	ID          NodeID `json:"id" yaml:"id"`
	Path        string `json:"path" yaml:"path"`
	PrimaryType string `json:"primary_type,omitempty" yaml:"type,omitempty"`
}

// Name returns the last path segment, or "" for the root.
func (n Node) Name() string {
	if n.Path == RootPath {
		return ""
	}
	return path.Base(n.Path)
}

// IsRoot reports whether the node is the repository root.
func (n Node) IsRoot() bool {
	return n.Path == RootPath
}

// ParentPath returns the path of the node's parent. The root has no parent.
func (n Node) ParentPath() (string, bool) {
	if n.IsRoot() {
		return "", false
	}
	return path.Dir(n.Path), true
}

func (n Node) String() string {
	return n.Path
}

// Property is a read handle to one named property of a node. Every read goes
// to the repository at call time and may fail.
type Property interface {
	// Name is the property's identity within its node.
	Name() string

	// Parent returns the node the property is attached to.
	Parent(ctx context.Context) (Node, error)

	// IsMultiple reports the property's cardinality.
	IsMultiple(ctx context.Context) (bool, error)

	// Value returns the sole value of a single-valued property.
	Value(ctx context.Context) (Value, error)

	// Values returns the ordered values of a multi-valued property.
	Values(ctx context.Context) ([]Value, error)
}

// Session is the repository access context.
type Session interface {
	// Node returns the node at an absolute path.
	Node(ctx context.Context, path string) (Node, error)

	// NodeByID returns the node with the given identifier.
	NodeByID(ctx context.Context, id NodeID) (Node, error)

	// Properties returns the node's properties ordered by name.
	Properties(ctx context.Context, node Node) ([]Property, error)

	// Children returns the node's direct children ordered by path.
	Children(ctx context.Context, node Node) ([]Node, error)
}

// CleanPath validates and normalizes an absolute repository path.
func CleanPath(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if strings.Contains(clean, "//") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// IsChildPath reports whether child is a direct child of parent.
func IsChildPath(parent, child string) bool {
	if child == parent || child == RootPath {
		return false
	}
	return path.Dir(child) == parent
}

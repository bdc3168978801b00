package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory repository. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	byPath map[string]*Record
	byID   map[NodeID]string
}

// NewMemoryStore creates an empty store holding only the root node.
func NewMemoryStore() *MemoryStore {
	root := &Record{Node: Node{ID: NodeID(uuid.New().String()), Path: RootPath, PrimaryType: "root"}}
	return &MemoryStore{
		byPath: map[string]*Record{RootPath: root},
		byID:   map[NodeID]string{root.ID: RootPath},
	}
}

// AddNode creates a node below an existing parent and returns it.
func (s *MemoryStore) AddNode(p, primaryType string) (Node, error) {
	return s.AddNodeWithID(p, primaryType, NodeID(uuid.New().String()))
}

// AddNodeWithID creates a node with a caller-chosen identifier.
func (s *MemoryStore) AddNodeWithID(p, primaryType string, id NodeID) (Node, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return Node{}, err
	}
	if id == "" {
		return Node{}, fmt.Errorf("add node %s: empty id", clean)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byPath[clean]; ok {
		return Node{}, fmt.Errorf("add node %s: %w", clean, ErrExists)
	}
	if _, ok := s.byID[id]; ok {
		return Node{}, fmt.Errorf("add node %s: id %s: %w", clean, id, ErrExists)
	}
	node := Node{ID: id, Path: clean, PrimaryType: primaryType}
	parent, _ := node.ParentPath()
	if _, ok := s.byPath[parent]; !ok {
		return Node{}, fmt.Errorf("add node %s: parent %s: %w", clean, parent, ErrNotFound)
	}

	s.byPath[clean] = &Record{Node: node}
	s.byID[id] = clean
	return node, nil
}

// Put stores a whole record, replacing any record at the same path. The
// parent must already exist.
func (s *MemoryStore) Put(rec *Record) error {
	clean, err := CleanPath(rec.Path)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("put %s: empty id", clean)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if clean != RootPath {
		parent, _ := Node{Path: clean}.ParentPath()
		if _, ok := s.byPath[parent]; !ok {
			return fmt.Errorf("put %s: parent %s: %w", clean, parent, ErrNotFound)
		}
	}
	if old, ok := s.byPath[clean]; ok {
		delete(s.byID, old.ID)
	}
	c := rec.Clone()
	c.Path = clean
	s.byPath[clean] = c
	s.byID[c.ID] = clean
	return nil
}

// SetProperty sets a single-valued property.
func (s *MemoryStore) SetProperty(p, name string, v Value) error {
	return s.setProperty(p, PropertyRecord{Name: name, Values: []Value{v}})
}

// SetMultiProperty sets a multi-valued property. values may be empty.
func (s *MemoryStore) SetMultiProperty(p, name string, values []Value) error {
	return s.setProperty(p, PropertyRecord{Name: name, Multiple: true, Values: append([]Value(nil), values...)})
}

func (s *MemoryStore) setProperty(p string, prop PropertyRecord) error {
	if prop.Name == "" {
		return fmt.Errorf("set property on %s: empty name", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byPath[p]
	if !ok {
		return fmt.Errorf("set property %s on %s: %w", prop.Name, p, ErrNotFound)
	}
	rec.SetProperty(prop)
	return nil
}

// RemoveProperty deletes a property from a node.
func (s *MemoryStore) RemoveProperty(p, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byPath[p]
	if !ok || !rec.RemoveProperty(name) {
		return fmt.Errorf("remove property %s on %s: %w", name, p, ErrNotFound)
	}
	return nil
}

// Remove deletes a node and its whole subtree. The root cannot be removed.
func (s *MemoryStore) Remove(p string) error {
	if p == RootPath {
		return fmt.Errorf("remove %s: %w", p, ErrInvalidPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byPath[p]; !ok {
		return fmt.Errorf("remove %s: %w", p, ErrNotFound)
	}
	for path, rec := range s.byPath {
		if path == p || strings.HasPrefix(path, p+"/") {
			delete(s.byID, rec.ID)
			delete(s.byPath, path)
		}
	}
	return nil
}

// Records returns a snapshot of every record ordered by path, so parents
// precede their children.
func (s *MemoryStore) Records() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*Record, 0, len(s.byPath))
	for _, rec := range s.byPath {
		recs = append(recs, rec.Clone())
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Path < recs[j].Path })
	return recs
}

// ReadRecord implements RecordReader.
func (s *MemoryStore) ReadRecord(ctx context.Context, p string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byPath[p]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", p, ErrNotFound)
	}
	return rec.Clone(), nil
}

// Node implements Session.
func (s *MemoryStore) Node(ctx context.Context, p string) (Node, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return Node{}, err
	}
	rec, err := s.ReadRecord(ctx, clean)
	if err != nil {
		return Node{}, err
	}
	return rec.Node, nil
}

// NodeByID implements Session.
func (s *MemoryStore) NodeByID(ctx context.Context, id NodeID) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("node id %s: %w", id, ErrNotFound)
	}
	return s.byPath[p].Node, nil
}

// Properties implements Session.
func (s *MemoryStore) Properties(ctx context.Context, node Node) ([]Property, error) {
	rec, err := s.ReadRecord(ctx, node.Path)
	if err != nil {
		return nil, err
	}
	return PropertyHandles(s, rec), nil
}

// Children implements Session.
func (s *MemoryStore) Children(ctx context.Context, node Node) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byPath[node.Path]; !ok {
		return nil, fmt.Errorf("node %s: %w", node.Path, ErrNotFound)
	}
	var children []Node
	for p, rec := range s.byPath {
		if IsChildPath(node.Path, p) {
			children = append(children, rec.Node)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })
	return children, nil
}

// Package kv provides a repository backed by NATS JetStream key-value
// buckets. Node records are stored as JSON keyed by node identifier, with a
// second bucket indexing paths to identifiers.
package kv

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/semrepo/repository"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Default bucket names.
const (
	BucketNodes = "SEMREPO_NODES"
	BucketPaths = "SEMREPO_PATHS"
)

// Store implements repository.Session over JetStream KV.
type Store struct {
	nodes jetstream.KeyValue
	paths jetstream.KeyValue
}

// NewStore opens the node and path buckets, creating them if they don't
// exist. prefix, when set, replaces the SEMREPO bucket name prefix.
func NewStore(ctx context.Context, js jetstream.JetStream, prefix string) (*Store, error) {
	nodesBucket, pathsBucket := BucketNodes, BucketPaths
	if prefix != "" {
		nodesBucket = prefix + "_NODES"
		pathsBucket = prefix + "_PATHS"
	}

	nodes, err := getOrCreateBucket(ctx, js, nodesBucket)
	if err != nil {
		return nil, fmt.Errorf("create nodes bucket: %w", err)
	}
	paths, err := getOrCreateBucket(ctx, js, pathsBucket)
	if err != nil {
		return nil, fmt.Errorf("create paths bucket: %w", err)
	}

	s := &Store{nodes: nodes, paths: paths}
	if err := s.ensureRoot(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureRoot(ctx context.Context) error {
	_, err := s.lookupID(ctx, repository.RootPath)
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	root := &repository.Record{Node: repository.Node{
		ID:          repository.NodeID(uuid.New().String()),
		Path:        repository.RootPath,
		PrimaryType: "root",
	}}
	if err := s.Put(ctx, root); err != nil {
		return fmt.Errorf("create root: %w", err)
	}
	return nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semrepo %s storage", strings.ToLower(name)),
		History:     5,
	})
}

// pathKey encodes a repository path into a valid KV key.
func pathKey(p string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(p))
}

func keyPath(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("decode path key %q: %w", key, err)
	}
	return string(b), nil
}

// idKey encodes a node identifier into a valid KV key.
func idKey(id repository.NodeID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// Put stores a record. Its parent must already be stored unless the record
// is the root.
func (s *Store) Put(ctx context.Context, rec *repository.Record) error {
	clean, err := repository.CleanPath(rec.Path)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("put %s: empty id", clean)
	}
	if parent, ok := (repository.Node{Path: clean}).ParentPath(); ok {
		if _, err := s.lookupID(ctx, parent); err != nil {
			return fmt.Errorf("put %s: parent: %w", clean, err)
		}
	}

	c := rec.Clone()
	c.Path = clean
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}

	if err := s.unlinkStale(ctx, clean, c.ID); err != nil {
		return fmt.Errorf("put %s: %w", clean, err)
	}
	if _, err := s.nodes.Put(ctx, idKey(c.ID), data); err != nil {
		return fmt.Errorf("store node: %w", err)
	}
	if _, err := s.paths.Put(ctx, pathKey(clean), []byte(c.ID)); err != nil {
		return fmt.Errorf("store path index: %w", err)
	}
	return nil
}

// unlinkStale removes the entries a put of id at path replaces: the record
// of a different node previously at path, and the path index of id's
// previous location. Either would otherwise keep resolving.
func (s *Store) unlinkStale(ctx context.Context, path string, id repository.NodeID) error {
	prev, err := s.lookupID(ctx, path)
	switch {
	case err == nil && prev != id:
		if err := s.nodes.Delete(ctx, idKey(prev)); err != nil {
			return fmt.Errorf("delete replaced node %s: %w", prev, err)
		}
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	old, err := s.recordByID(ctx, id)
	switch {
	case err == nil && old.Path != path:
		if err := s.paths.Delete(ctx, pathKey(old.Path)); err != nil {
			return fmt.Errorf("delete moved path %s: %w", old.Path, err)
		}
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return nil
}

// Import stores records in path order so that parents precede children.
// An imported root record replaces the store's own root.
func (s *Store) Import(ctx context.Context, recs []*repository.Record) error {
	sorted := append([]*repository.Record(nil), recs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, rec := range sorted {
		if err := s.Put(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record at a path. Children are left in place.
func (s *Store) Delete(ctx context.Context, p string) error {
	id, err := s.lookupID(ctx, p)
	if err != nil {
		return err
	}
	if err := s.nodes.Delete(ctx, idKey(id)); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if err := s.paths.Delete(ctx, pathKey(p)); err != nil {
		return fmt.Errorf("delete path index: %w", err)
	}
	return nil
}

func (s *Store) lookupID(ctx context.Context, p string) (repository.NodeID, error) {
	entry, err := s.paths.Get(ctx, pathKey(p))
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("node %s: %w", p, repository.ErrNotFound)
		}
		return "", fmt.Errorf("get path index: %w", err)
	}
	return repository.NodeID(entry.Value()), nil
}

func (s *Store) recordByID(ctx context.Context, id repository.NodeID) (*repository.Record, error) {
	entry, err := s.nodes.Get(ctx, idKey(id))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("node id %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}

	var rec repository.Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal node: %w", err)
	}
	return &rec, nil
}

// ReadRecord implements repository.RecordReader.
func (s *Store) ReadRecord(ctx context.Context, p string) (*repository.Record, error) {
	id, err := s.lookupID(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.recordByID(ctx, id)
}

// Node implements repository.Session.
func (s *Store) Node(ctx context.Context, p string) (repository.Node, error) {
	clean, err := repository.CleanPath(p)
	if err != nil {
		return repository.Node{}, err
	}
	rec, err := s.ReadRecord(ctx, clean)
	if err != nil {
		return repository.Node{}, err
	}
	return rec.Node, nil
}

// NodeByID implements repository.Session.
func (s *Store) NodeByID(ctx context.Context, id repository.NodeID) (repository.Node, error) {
	rec, err := s.recordByID(ctx, id)
	if err != nil {
		return repository.Node{}, err
	}
	return rec.Node, nil
}

// Properties implements repository.Session.
func (s *Store) Properties(ctx context.Context, node repository.Node) ([]repository.Property, error) {
	rec, err := s.ReadRecord(ctx, node.Path)
	if err != nil {
		return nil, err
	}
	return repository.PropertyHandles(s, rec), nil
}

// Children implements repository.Session. It scans the path index, so its
// cost grows with the size of the repository.
func (s *Store) Children(ctx context.Context, node repository.Node) ([]repository.Node, error) {
	keys, err := s.paths.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list path keys: %w", err)
	}

	var children []repository.Node
	for _, key := range keys {
		p, err := keyPath(key)
		if err != nil {
			return nil, err
		}
		if !repository.IsChildPath(node.Path, p) {
			continue
		}
		child, err := s.Node(ctx, p)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })
	return children, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

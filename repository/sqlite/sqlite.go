// Package sqlite provides a repository backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/c360studio/semrepo/repository"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store implements repository.Session using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath. ":memory:" gives a
// private in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		parent_path TEXT,
		primary_type TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS properties (
		node_id TEXT NOT NULL,
		name TEXT NOT NULL,
		multiple INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (node_id, name),
		FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS property_values (
		node_id TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		lexical TEXT NOT NULL,
		lang TEXT,
		PRIMARY KEY (node_id, name, position),
		FOREIGN KEY (node_id, name) REFERENCES properties(node_id, name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_path);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.ensureRoot(context.Background())
}

func (s *Store) ensureRoot(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE path = ?`, repository.RootPath).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, path, parent_path, primary_type) VALUES (?, ?, NULL, 'root')`,
		uuid.New().String(), repository.RootPath)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a record, replacing the node at the same path together with
// all of its properties. The parent must already exist.
func (s *Store) Put(ctx context.Context, rec *repository.Record) error {
	clean, err := repository.CleanPath(rec.Path)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("put %s: empty id", clean)
	}
	parent, hasParent := (repository.Node{Path: clean}).ParentPath()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var parentPath sql.NullString
	if hasParent {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE path = ?`, parent).Scan(&n); err != nil {
			return fmt.Errorf("check parent: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("put %s: parent %s: %w", clean, parent, repository.ErrNotFound)
		}
		parentPath = sql.NullString{String: parent, Valid: true}
	}

	for _, stmt := range []string{
		`DELETE FROM property_values WHERE node_id IN (SELECT id FROM nodes WHERE path = ? OR id = ?)`,
		`DELETE FROM properties WHERE node_id IN (SELECT id FROM nodes WHERE path = ? OR id = ?)`,
		`DELETE FROM nodes WHERE path = ? OR id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, clean, string(rec.ID)); err != nil {
			return fmt.Errorf("replace node: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (id, path, parent_path, primary_type) VALUES (?, ?, ?, ?)`,
		string(rec.ID), clean, parentPath, rec.PrimaryType); err != nil {
		return fmt.Errorf("insert node: %w", err)
	}

	for _, p := range rec.Properties {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO properties (node_id, name, multiple) VALUES (?, ?, ?)`,
			string(rec.ID), p.Name, boolToInt(p.Multiple)); err != nil {
			return fmt.Errorf("insert property %s: %w", p.Name, err)
		}
		for i, v := range p.Values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO property_values (node_id, name, position, type, lexical, lang) VALUES (?, ?, ?, ?, ?, ?)`,
				string(rec.ID), p.Name, i, string(v.Type), v.Lexical, stringToNull(v.Lang)); err != nil {
				return fmt.Errorf("insert value %s[%d]: %w", p.Name, i, err)
			}
		}
	}

	return tx.Commit()
}

// Import stores records in path order so that parents precede children.
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

// ReadRecord implements repository.RecordReader.
func (s *Store) ReadRecord(ctx context.Context, p string) (*repository.Record, error) {
	node, err := s.scanNode(s.db.QueryRowContext(ctx,
		`SELECT id, path, primary_type FROM nodes WHERE path = ?`, p))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("node %s: %w", p, err)
		}
		return nil, err
	}

	rec := &repository.Record{Node: node}
	props, err := s.readProperties(ctx, node.ID)
	if err != nil {
		return nil, err
	}
	rec.Properties = props
	return rec, nil
}

func (s *Store) readProperties(ctx context.Context, id repository.NodeID) ([]repository.PropertyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.multiple, v.type, v.lexical, v.lang
		FROM properties p
		LEFT JOIN property_values v ON v.node_id = p.node_id AND v.name = p.name
		WHERE p.node_id = ?
		ORDER BY p.name, v.position`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var props []repository.PropertyRecord
	for rows.Next() {
		var (
			name     string
			multiple int
			typ      sql.NullString
			lexical  sql.NullString
			lang     sql.NullString
		)
		if err := rows.Scan(&name, &multiple, &typ, &lexical, &lang); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		if len(props) == 0 || props[len(props)-1].Name != name {
			props = append(props, repository.PropertyRecord{
				Name:     name,
				Multiple: multiple != 0,
				Values:   []repository.Value{},
			})
		}
		if typ.Valid {
			last := &props[len(props)-1]
			last.Values = append(last.Values, repository.Value{
				Type:    repository.ValueType(typ.String),
				Lexical: lexical.String,
				Lang:    nullToString(lang),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return props, nil
}

func (s *Store) scanNode(row *sql.Row) (repository.Node, error) {
	var (
		id, path    string
		primaryType string
	)
	if err := row.Scan(&id, &path, &primaryType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.Node{}, repository.ErrNotFound
		}
		return repository.Node{}, fmt.Errorf("scan node: %w", err)
	}
	return repository.Node{ID: repository.NodeID(id), Path: path, PrimaryType: primaryType}, nil
}

// Node implements repository.Session.
func (s *Store) Node(ctx context.Context, p string) (repository.Node, error) {
	clean, err := repository.CleanPath(p)
	if err != nil {
		return repository.Node{}, err
	}
	node, err := s.scanNode(s.db.QueryRowContext(ctx,
		`SELECT id, path, primary_type FROM nodes WHERE path = ?`, clean))
	if err != nil {
		return repository.Node{}, fmt.Errorf("node %s: %w", clean, err)
	}
	return node, nil
}

// NodeByID implements repository.Session.
func (s *Store) NodeByID(ctx context.Context, id repository.NodeID) (repository.Node, error) {
	node, err := s.scanNode(s.db.QueryRowContext(ctx,
		`SELECT id, path, primary_type FROM nodes WHERE id = ?`, string(id)))
	if err != nil {
		return repository.Node{}, fmt.Errorf("node id %s: %w", id, err)
	}
	return node, nil
}

// Properties implements repository.Session.
func (s *Store) Properties(ctx context.Context, node repository.Node) ([]repository.Property, error) {
	rec, err := s.ReadRecord(ctx, node.Path)
	if err != nil {
		return nil, err
	}
	return repository.PropertyHandles(s, rec), nil
}

// Children implements repository.Session.
func (s *Store) Children(ctx context.Context, node repository.Node) ([]repository.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, primary_type FROM nodes WHERE parent_path = ? ORDER BY path`, node.Path)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	var children []repository.Node
	for rows.Next() {
		var id, path, primaryType string
		if err := rows.Scan(&id, &path, &primaryType); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, repository.Node{ID: repository.NodeID(id), Path: path, PrimaryType: primaryType})
	}
	return children, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

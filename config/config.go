// Package config provides configuration loading and management for semrepo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semrepo/export"
)

// Config represents the complete semrepo configuration
type Config struct {
	Repository RepositoryConfig `yaml:"repository"`
	NATS       NATSConfig       `yaml:"nats"`
	Graph      GraphConfig      `yaml:"graph"`
	Export     ExportConfig     `yaml:"export"`
}

// Backend selects where repository content is read from.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendKV     Backend = "kv"
	BackendSQLite Backend = "sqlite"
)

// RepositoryConfig configures the content repository
type RepositoryConfig struct {
	// Backend is one of memory, kv or sqlite
	Backend Backend `yaml:"backend"`
	// Seed is a YAML tree document loaded into the memory backend
	Seed string `yaml:"seed"`
	// Bucket is the KV bucket prefix for the kv backend
	Bucket string `yaml:"bucket"`
	// SQLitePath is the database file for the sqlite backend
	SQLitePath string `yaml:"sqlite_path"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Name is the client connection name
	Name string `yaml:"name"`
	// Timeout bounds connecting and each publish
	Timeout time.Duration `yaml:"timeout"`
}

// GraphConfig configures how nodes and properties are named in the graph
type GraphConfig struct {
	// BaseIRI prefixes node paths to form subjects
	BaseIRI string `yaml:"base_iri"`
	// PropertyNamespace prefixes property names with no registered predicate
	PropertyNamespace string `yaml:"property_namespace"`
	// TypeNamespace is where primary types are minted as classes
	TypeNamespace string `yaml:"type_namespace"`
	// Prefixes maps extra namespace prefixes used in property names
	Prefixes map[string]string `yaml:"prefixes"`
	// Subject is the ingest subject node statements are published to
	Subject string `yaml:"subject"`
	// Destination selects core publish (topic) or stream publish (queue)
	Destination DestinationKind `yaml:"destination"`
}

// ExportConfig configures file export
type ExportConfig struct {
	// Format is turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Profile is minimal, typed or prov
	Profile string `yaml:"profile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Backend:    BackendMemory,
			Bucket:     "SEMREPO",
			SQLitePath: "semrepo.db",
		},
		NATS: NATSConfig{
			URL:     "nats://localhost:4222",
			Name:    "semrepo",
			Timeout: 10 * time.Second,
		},
		Graph: GraphConfig{
			BaseIRI:           "urn:node:",
			PropertyNamespace: "urn:prop:",
			TypeNamespace:     export.DefaultTypeNamespace,
			Subject:           "graph.ingest.entity",
			Destination:       DestinationQueue,
		},
		Export: ExportConfig{
			Format:  string(export.FormatTurtle),
			Profile: string(export.ProfileTyped),
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Repository.Backend {
	case BackendMemory, BackendKV, BackendSQLite:
	default:
		return fmt.Errorf("repository.backend must be one of memory, kv, sqlite (got %q)", c.Repository.Backend)
	}
	if c.Repository.Backend == BackendSQLite && c.Repository.SQLitePath == "" {
		return fmt.Errorf("repository.sqlite_path is required for the sqlite backend")
	}
	if c.Repository.Backend == BackendKV && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required for the kv backend")
	}
	if c.Graph.BaseIRI == "" {
		return fmt.Errorf("graph.base_iri is required")
	}
	if c.Graph.Subject == "" {
		return fmt.Errorf("graph.subject is required")
	}
	if _, err := ParseDestinationKind(string(c.Graph.Destination)); err != nil {
		return fmt.Errorf("graph.destination: %w", err)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, err := export.ParseProfile(c.Export.Profile); err != nil {
		return fmt.Errorf("export.profile: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Repository
	if other.Repository.Backend != "" {
		c.Repository.Backend = other.Repository.Backend
	}
	if other.Repository.Seed != "" {
		c.Repository.Seed = other.Repository.Seed
	}
	if other.Repository.Bucket != "" {
		c.Repository.Bucket = other.Repository.Bucket
	}
	if other.Repository.SQLitePath != "" {
		c.Repository.SQLitePath = other.Repository.SQLitePath
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Name != "" {
		c.NATS.Name = other.NATS.Name
	}
	if other.NATS.Timeout != 0 {
		c.NATS.Timeout = other.NATS.Timeout
	}

	// Graph
	if other.Graph.BaseIRI != "" {
		c.Graph.BaseIRI = other.Graph.BaseIRI
	}
	if other.Graph.PropertyNamespace != "" {
		c.Graph.PropertyNamespace = other.Graph.PropertyNamespace
	}
	if other.Graph.TypeNamespace != "" {
		c.Graph.TypeNamespace = other.Graph.TypeNamespace
	}
	if len(other.Graph.Prefixes) > 0 {
		if c.Graph.Prefixes == nil {
			c.Graph.Prefixes = make(map[string]string, len(other.Graph.Prefixes))
		}
		for k, v := range other.Graph.Prefixes {
			c.Graph.Prefixes[k] = v
		}
	}
	if other.Graph.Subject != "" {
		c.Graph.Subject = other.Graph.Subject
	}
	if other.Graph.Destination != "" {
		c.Graph.Destination = other.Graph.Destination
	}

	// Export
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
	if other.Export.Profile != "" {
		c.Export.Profile = other.Export.Profile
	}
}

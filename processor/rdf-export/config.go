package rdfexport

import (
	"reflect"

	"github.com/c360studio/semrepo/export"
	repovocab "github.com/c360studio/semrepo/vocabulary/repo"
	"github.com/c360studio/semstreams/component"
)

// rdfExportSchema defines the configuration schema.
var rdfExportSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the rdf-export output component.
type Config struct {
	Ports         *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	Format        string                `json:"format" schema:"type:string,description:RDF serialization format (turtle/ntriples/jsonld),category:basic,default:turtle"`
	Profile       string                `json:"profile" schema:"type:string,description:Export profile (minimal/typed/prov),category:basic,default:typed"`
	BaseIRI       string                `json:"base_iri" schema:"type:string,description:Base IRI for relative output,category:advanced"`
	TypeNamespace string                `json:"type_namespace" schema:"type:string,description:Namespace for primary type IRIs,category:advanced"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "" {
		if _, err := export.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Profile != "" {
		if _, err := export.ParseProfile(c.Profile); err != nil {
			return err
		}
	}
	return nil
}

// GetFormat returns the configured format, turtle when unset.
func (c *Config) GetFormat() export.Format {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.FormatTurtle
	}
	return f
}

// GetProfile returns the configured profile, typed when unset.
func (c *Config) GetProfile() export.Profile {
	if c.Profile == "" {
		return export.ProfileTyped
	}
	p, err := export.ParseProfile(c.Profile)
	if err != nil {
		return export.ProfileMinimal
	}
	return p
}

// GetTypeNamespace returns the configured type namespace with a default
// fallback.
func (c *Config) GetTypeNamespace() string {
	if c.TypeNamespace != "" {
		return c.TypeNamespace
	}
	return repovocab.TypeNamespace
}

// DefaultConfig returns the default configuration for rdf-export.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "nodes_in",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Required:    true,
					Description: "Repository node messages from semrepo publish",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "rdf_out",
					Type:        "jetstream",
					Subject:     "graph.export.rdf",
					Required:    true,
					Description: "Serialized RDF documents, one per node",
				},
			},
		},
		Format:  "turtle",
		Profile: "typed",
	}
}

package rdfexport

import (
	"encoding/json"
	"errors"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "rdf",
		Category:    "document",
		Version:     "v1",
		Description: "One node serialized as an RDF document",
		Factory:     func() any { return &Payload{} },
	})
	if err != nil {
		panic("failed to register Payload: " + err.Error())
	}
}

// DocumentType is the message type for serialized node documents.
var DocumentType = message.Type{Domain: "rdf", Category: "document", Version: "v1"}

// Payload carries one node serialized in a single format.
type Payload struct {
	EntityID string `json:"entity_id"`
	Path     string `json:"path,omitempty"`
	Format   string `json:"format"`
	Profile  string `json:"profile"`
	Content  string `json:"content"`
}

// Schema returns the message type for Payload interface.
func (p *Payload) Schema() message.Type { return DocumentType }

// Validate validates the payload for Payload interface.
func (p *Payload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entity_id is required")
	}
	if p.Format == "" {
		return errors.New("format is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *Payload) MarshalJSON() ([]byte, error) {
	type Alias Payload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	type Alias Payload
	return json.Unmarshal(data, (*Alias)(p))
}

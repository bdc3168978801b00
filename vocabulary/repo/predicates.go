package repo

import "github.com/c360studio/semstreams/vocabulary"

// Namespace for repository predicates without a standard equivalent.
const Namespace = "https://semrepo.dev/vocabulary/repo#"

// TypeNamespace is where node primary types are minted as classes.
const TypeNamespace = "https://semrepo.dev/vocabulary/type#"

// Standard IRIs the repository predicates map onto.
const (
	DCCreated    = "http://purl.org/dc/terms/created"
	DCModified   = "http://purl.org/dc/terms/modified"
	DCIdentifier = "http://purl.org/dc/terms/identifier"
	DCCreator    = "http://purl.org/dc/terms/creator"
)

// Node bookkeeping predicates.
const (
	// NodeCreated is the RFC3339 creation timestamp.
	NodeCreated = "repo.node.created"

	// NodeCreatedBy is the principal that created the node.
	NodeCreatedBy = "repo.node.created_by"

	// NodeLastModified is the RFC3339 last modification timestamp.
	NodeLastModified = "repo.node.last_modified"

	// NodeLastModifiedBy is the principal that last modified the node.
	NodeLastModifiedBy = "repo.node.last_modified_by"

	// NodePrimaryType is the node's primary type name.
	NodePrimaryType = "repo.node.primary_type"

	// NodeMixinTypes lists the node's mixin type names.
	NodeMixinTypes = "repo.node.mixin_types"

	// NodeUUID is the node's stable identifier.
	NodeUUID = "repo.node.uuid"
)

func init() {
	vocabulary.Register(NodeCreated,
		vocabulary.WithDescription("Node creation time"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(DCCreated))

	vocabulary.Register(NodeCreatedBy,
		vocabulary.WithDescription("Principal that created the node"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCCreator))

	vocabulary.Register(NodeLastModified,
		vocabulary.WithDescription("Node last modification time"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(DCModified))

	vocabulary.Register(NodeLastModifiedBy,
		vocabulary.WithDescription("Principal that last modified the node"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.ProvWasAttributedTo))

	vocabulary.Register(NodePrimaryType,
		vocabulary.WithDescription("Primary node type"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"primaryType"))

	vocabulary.Register(NodeMixinTypes,
		vocabulary.WithDescription("Mixin node types"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"mixinTypes"))

	vocabulary.Register(NodeUUID,
		vocabulary.WithDescription("Stable node identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCIdentifier))
}

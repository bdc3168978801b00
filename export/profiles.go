package export

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/c360studio/semrepo/rdf"
	repovocab "github.com/c360studio/semrepo/vocabulary/repo"
	"github.com/c360studio/semstreams/vocabulary"
)

// DefaultTypeNamespace is the namespace primary types are minted in.
const DefaultTypeNamespace = repovocab.TypeNamespace

// Profile determines which type assertions are added to exported nodes.
type Profile string

const (
	// ProfileMinimal exports node statements only.
	ProfileMinimal Profile = "minimal"

	// ProfileTyped adds an rdf:type assertion for each node's primary type.
	ProfileTyped Profile = "typed"

	// ProfilePROV adds the typed assertions plus prov:Entity.
	ProfilePROV Profile = "prov"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeTypes asserts each node's primary type.
	IncludeTypes bool

	// IncludePROV asserts prov:Entity on every node.
	IncludePROV bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "Node statements only",
	},
	ProfileTyped: {
		Name:         ProfileTyped,
		Description:  "Node statements plus primary type assertions",
		IncludeTypes: true,
	},
	ProfilePROV: {
		Name:         ProfilePROV,
		Description:  "Primary type and PROV-O entity assertions",
		IncludeTypes: true,
		IncludePROV:  true,
	},
}

// GetProfileConfig returns the configuration for a profile. Unknown profiles
// fall back to minimal.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileMinimal]
}

// TypeAsserter generates type assertions for nodes based on profile.
type TypeAsserter struct {
	profile   ProfileConfig
	namespace string
}

// NewTypeAsserter creates a type asserter minting primary types in namespace.
func NewTypeAsserter(profile Profile, namespace string) *TypeAsserter {
	if namespace == "" {
		namespace = DefaultTypeNamespace
	}
	return &TypeAsserter{profile: GetProfileConfig(profile), namespace: namespace}
}

// TypeIRIs returns the class IRIs asserted for a node with the given
// primary type.
func (a *TypeAsserter) TypeIRIs(primaryType string) []string {
	types := make([]string, 0, 2)
	if a.profile.IncludeTypes && primaryType != "" {
		types = append(types, a.namespace+url.PathEscape(primaryType))
	}
	if a.profile.IncludePROV {
		types = append(types, vocabulary.ProvEntity)
	}
	return types
}

// Triples returns the rdf:type statements for subject.
func (a *TypeAsserter) Triples(subject rdf.Term, primaryType string) []rdf.Triple {
	iris := a.TypeIRIs(primaryType)
	triples := make([]rdf.Triple, 0, len(iris))
	for _, iri := range iris {
		triples = append(triples, rdf.NewTriple(subject, rdf.NewIRI(rdf.RDFType), rdf.NewIRI(iri)))
	}
	return triples
}

// ParseProfile parses a profile name, case-insensitively.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Profiles[p]; !ok {
		return "", fmt.Errorf("unsupported profile: %s (valid: minimal, typed, prov)", s)
	}
	return p, nil
}

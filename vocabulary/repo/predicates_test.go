package repo_test

import (
	"testing"

	"github.com/c360studio/semrepo/vocabulary/repo"
	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	tests := []struct {
		predicate   string
		expectedIRI string
	}{
		{repo.NodeCreated, repo.DCCreated},
		{repo.NodeCreatedBy, repo.DCCreator},
		{repo.NodeLastModified, repo.DCModified},
		{repo.NodeLastModifiedBy, vocabulary.ProvWasAttributedTo},
		{repo.NodePrimaryType, repo.Namespace + "primaryType"},
		{repo.NodeMixinTypes, repo.Namespace + "mixinTypes"},
		{repo.NodeUUID, repo.DCIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(tt.predicate)
			if meta == nil {
				t.Fatalf("predicate %q not registered", tt.predicate)
			}
			if meta.Description == "" {
				t.Errorf("predicate %q has no description", tt.predicate)
			}
			if meta.StandardIRI != tt.expectedIRI {
				t.Errorf("predicate %s: expected IRI %s, got %s", tt.predicate, tt.expectedIRI, meta.StandardIRI)
			}
		})
	}
}

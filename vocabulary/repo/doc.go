// Package repo provides vocabulary predicates for repository system
// properties.
//
// Content repositories attach bookkeeping properties to every node
// (creation time, last modifier, node type). Registering them here maps
// them onto Dublin Core and PROV-O so that graph conversion emits standard
// predicates instead of repository-private ones.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semrepo/vocabulary/repo"
package repo

// Package entity holds the mapping from URL identifiers to document keys.
package entity

import "strings"

// Identifier is an entity reference as it arrives in a URL path segment.
type Identifier string

// DisplayName recovers the document key by replacing every underscore with a
// space. The transform is lossy: names that really contain an underscore can
// never be addressed, and casing or punctuation is not recovered.
func (id Identifier) DisplayName() string {
	return strings.ReplaceAll(string(id), "_", " ")
}

// String returns the identifier unchanged.
func (id Identifier) String() string { return string(id) }

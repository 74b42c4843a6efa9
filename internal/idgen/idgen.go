// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Namespace prefixes, one per entity family. Identifiers are unique across
// all graphs, so allocation is process-wide rather than per-graph.
var (
	GraphPrefix = "gr-"
	NodePrefix  = "nd-"
	EdgePrefix  = "ed-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// NewGraphID returns a new unique graph identifier.
func NewGraphID() (string, error) {
	return GenerateWithPrefix(GraphPrefix)
}

// NewNodeID returns a new unique node identifier.
func NewNodeID() (string, error) {
	return GenerateWithPrefix(NodePrefix)
}

// NewEdgeID returns a new unique edge identifier.
func NewEdgeID() (string, error) {
	return GenerateWithPrefix(EdgePrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// IsValid reports whether id carries the given prefix followed by at least
// one character from the generation alphabet.
func IsValid(prefix, id string) bool {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

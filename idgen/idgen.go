// Package idgen generates process identifiers.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator can generate IDs
type Generator interface {
	// Generate an ID
	Generate() string
}

// NewSequential returns a generator that emits prefix000001, prefix000002,
// and so on. The fixed width keeps lexicographic order equal to creation
// order.
func NewSequential(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

// NewUnique returns a generator of globally unique IDs. The IDs are not
// deterministic across runs, but they still sort in creation order.
func NewUnique() Generator {
	return uniqueGenerator{}
}

type sequentialGenerator struct {
	prefix string
	next   uint64
}

func (g *sequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.next, 1)
	return fmt.Sprintf("%s%06d", g.prefix, n)
}

type uniqueGenerator struct{}

func (uniqueGenerator) Generate() string {
	return xid.New().String()
}

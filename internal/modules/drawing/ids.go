package drawing

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh drawing ID. IDs must be unique for the lifetime
// of a drawing set.
type IDGenerator func() string

// UUIDs generates random UUIDv4 drawing IDs
func UUIDs() IDGenerator {
	return func() string {
		return "drawing_" + uuid.NewString()
	}
}

// SequentialIDs generates deterministic IDs: prefix_1, prefix_2, ...
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s_%d", prefix, n.Add(1))
	}
}

//go:build property
// +build property

package connection

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSlotExistenceInvariant checks that for any operation sequence the slot
// is occupied iff the most recent successful Put has not been followed by a
// successful Take.
func TestSlotExistenceInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("exists tracks put/take history", prop.ForAll(
		func(ops []bool, ids []uint32) bool {
			s := NewState()
			occupied := false
			for i, put := range ops {
				var id uint32 = 1
				if i < len(ids) {
					id = ids[i]
				}
				if put {
					err := s.Put(Connection{ID: id, Owner: "prop"})
					if occupied != (err != nil) {
						return false
					}
					occupied = true
				} else {
					_, err := s.Take()
					if occupied == (err != nil) {
						return false
					}
					occupied = false
				}
				if s.Exists() != occupied {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

// Package primitives defines the integer newtypes shared by the slashing protection
// database and the signing gate.
package primitives

import "fmt"

// Slot represents a single slot.
type Slot uint64

// String --
func (s Slot) String() string {
	return fmt.Sprintf("%d", uint64(s))
}

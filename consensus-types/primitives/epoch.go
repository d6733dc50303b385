package primitives

import "fmt"

// Epoch represents a single epoch.
type Epoch uint64

// String --
func (e Epoch) String() string {
	return fmt.Sprintf("%d", uint64(e))
}

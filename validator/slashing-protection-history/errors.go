package history

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedInterchangeData is returned when an interchange document cannot be parsed or
	// contains a logical impossibility. Nothing is persisted when it is returned.
	ErrMalformedInterchangeData = errors.New("malformed interchange data")
	// ErrEmptyGenesisValidatorsRoot is returned when a document or the database has no
	// genesis validators root.
	ErrEmptyGenesisValidatorsRoot = errors.New("genesis validators root is empty")
)

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedInterchangeData, err)
}

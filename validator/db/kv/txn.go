package kv

import (
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// Txn is a transaction scoped view over the protection tables. It is only valid
// inside the callback it was handed to.
type Txn struct {
	tx       Tx
	store    *Store
	registry bool
	created  map[string]primitives.ValidatorID
}

func newTxn(s *Store, tx Tx, registry bool) *Txn {
	return &Txn{
		tx:       tx,
		store:    s,
		registry: registry,
		created:  make(map[string]primitives.ValidatorID),
	}
}

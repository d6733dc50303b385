package kv

import "github.com/prysmaticlabs/signer-protection/consensus-types/primitives"

func primitivesID(id uint64) primitives.ValidatorID {
	return primitives.ValidatorID(id)
}

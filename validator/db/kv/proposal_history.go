package kv

import (
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// SignedBlockAtSlot returns the block signed by the validator at slot, or nil.
func (t *Txn) SignedBlockAtSlot(id primitives.ValidatorID, slot primitives.Slot) (*SignedBlock, error) {
	key := validatorKey(id, uint64(slot))
	enc, err := t.tx.Get(signedBlocksBucket, key)
	if err != nil || enc == nil {
		return nil, err
	}
	b, ok := decodeSignedBlock(key, enc)
	if !ok {
		return nil, corruptRecord(signedBlocksBucket, key)
	}
	return b, nil
}

// SaveSignedBlock records a signed block, replacing any row at the same slot.
func (t *Txn) SaveSignedBlock(b *SignedBlock) error {
	return t.tx.Put(signedBlocksBucket, validatorKey(b.ValidatorID, uint64(b.Slot)), encodeSignedBlock(b))
}

// SignedBlocks returns every block signed by the validator in ascending slot order.
func (t *Txn) SignedBlocks(id primitives.ValidatorID) ([]*SignedBlock, error) {
	blocks := make([]*SignedBlock, 0)
	err := t.tx.Ascend(signedBlocksBucket, validatorPrefix(id), nil, func(k, v []byte) (bool, error) {
		b, ok := decodeSignedBlock(k, v)
		if !ok {
			return false, corruptRecord(signedBlocksBucket, k)
		}
		blocks = append(blocks, b)
		return true, nil
	})
	return blocks, err
}

// HighestSignedBlockSlot returns the greatest slot signed by the validator. The boolean
// is false when no block was ever recorded.
func (t *Txn) HighestSignedBlockSlot(id primitives.ValidatorID) (primitives.Slot, bool, error) {
	k, _, err := t.tx.Last(signedBlocksBucket, validatorPrefix(id))
	if err != nil || k == nil {
		return 0, false, err
	}
	_, slot, ok := decodeValidatorKey(k)
	if !ok {
		return 0, false, corruptRecord(signedBlocksBucket, k)
	}
	return primitives.Slot(slot), true, nil
}

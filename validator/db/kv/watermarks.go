package kv

import (
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// Watermark returns the watermarks of the validator. Fields that were never established are nil.
func (t *Txn) Watermark(id primitives.ValidatorID) (*Watermark, error) {
	key := validatorPrefix(id)
	enc, err := t.tx.Get(watermarksBucket, key)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return &Watermark{ValidatorID: id}, nil
	}
	w, ok := decodeWatermark(id, enc)
	if !ok {
		return nil, corruptRecord(watermarksBucket, key)
	}
	return w, nil
}

// SaveWatermark stores the watermarks of w.ValidatorID.
func (t *Txn) SaveWatermark(w *Watermark) error {
	return t.tx.Put(watermarksBucket, validatorPrefix(w.ValidatorID), encodeWatermark(w))
}
